package model

// PoolKind identifies the AMM flavour of a pool contract.
type PoolKind string

const (
	PoolKindV2 PoolKind = "v2"
	PoolKindV3 PoolKind = "v3"
)

// PoolMeta captures immutable pool metadata.
type PoolMeta struct {
	Kind   PoolKind `json:"kind"`
	Token0 string   `json:"token0"`
	Token1 string   `json:"token1"`
}
