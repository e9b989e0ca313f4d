package model

import (
	"encoding/json"
	"testing"
)

func TestPoolSnapshotJSONStringAmounts(t *testing.T) {
	snapshot := PoolSnapshot{
		ChainID:     56,
		Pool:        "0x1111111111111111111111111111111111111111",
		BlockNumber: 36000000,
		CurrentTick: -15,
		Incentives: []IncentiveRecord{{
			RewardToken:  "0x2222222222222222222222222222222222222222",
			StartTime:    1,
			EndTime:      2,
			Token0Amount: "340282366920938463463374607431768211455",
			RewardRate:   "1000000000000000000",
		}},
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	incentives, ok := decoded["incentives"].([]interface{})
	if !ok || len(incentives) != 1 {
		t.Fatalf("incentives should be a one-element array")
	}
	incentive := incentives[0].(map[string]interface{})
	if _, ok := incentive["token0_amount"].(string); !ok {
		t.Fatalf("token0_amount should be string")
	}
	if _, ok := incentive["reward_rate"].(string); !ok {
		t.Fatalf("reward_rate should be string")
	}
	if _, ok := decoded["tokens"]; ok {
		t.Fatalf("empty tokens should be omitted")
	}
}

func TestPoolMetricsUndefinedIsNull(t *testing.T) {
	data, err := json.Marshal(PoolMetrics{Undefined: map[string]string{"apr": "total supply is zero"}})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if v, ok := decoded["apr"]; !ok || v != nil {
		t.Fatalf("apr should be present and null, got %v", v)
	}
}
