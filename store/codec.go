package store

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	bc "github.com/launchlab/bondingcurve-go/bonding_curve"
)

// The borsh codec produces the durable snapshot form of engine state: the
// journal stores a post-trade curve snapshot per row, and embedders can
// checkpoint/restore a ledger through it.

func EncodeCurve(curve *bc.CurveState) ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(curve); err != nil {
		return nil, fmt.Errorf("encode curve state: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeCurve(data []byte) (bc.CurveState, error) {
	var curve bc.CurveState
	if err := bin.NewBorshDecoder(data).Decode(&curve); err != nil {
		return bc.CurveState{}, fmt.Errorf("decode curve state: %w", err)
	}
	return curve, nil
}

func EncodeLaunch(rec *bc.LaunchRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(rec); err != nil {
		return nil, fmt.Errorf("encode launch record: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeLaunch(data []byte) (bc.LaunchRecord, error) {
	var rec bc.LaunchRecord
	if err := bin.NewBorshDecoder(data).Decode(&rec); err != nil {
		return bc.LaunchRecord{}, fmt.Errorf("decode launch record: %w", err)
	}
	return rec, nil
}

func EncodeConfig(cfg *bc.PlatformConfig) ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode platform config: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeConfig(data []byte) (bc.PlatformConfig, error) {
	var cfg bc.PlatformConfig
	if err := bin.NewBorshDecoder(data).Decode(&cfg); err != nil {
		return bc.PlatformConfig{}, fmt.Errorf("decode platform config: %w", err)
	}
	return cfg, nil
}
