package model

import (
	"github.com/kraftonexstudios/finshield/admin-module/internal/docstore"
)

// Уровни риска.
const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)

// RiskScore — оценка риска пользователя, рассчитанная risk-движком.
// Хранится в коллекции risk_scores.
type RiskScore struct {
	// ID — идентификатор документа
	ID string `json:"id"`
	// UserID — пользователь, для которого рассчитана оценка
	UserID string `json:"userId"`
	// Score — численная оценка риска (0..100)
	Score float64 `json:"riskScore"`
	// Level — категория риска (low, medium, high)
	Level string `json:"riskLevel"`
	// Factors — факторы, повлиявшие на оценку
	Factors []string `json:"factors"`
	// Timestamp — время расчёта, epoch-миллисекунды
	Timestamp int64 `json:"timestamp"`
}

// DecodeRiskScore декодирует документ коллекции risk_scores.
func DecodeRiskScore(doc docstore.Document) (RiskScore, error) {
	var (
		rs  = RiskScore{ID: doc.ID}
		err error
	)
	if rs.UserID, err = decodeString(doc.Fields, "userId"); err != nil {
		return RiskScore{}, err
	}
	if rs.Score, err = decodeFloat(doc.Fields, "riskScore"); err != nil {
		return RiskScore{}, err
	}
	if rs.Level, err = decodeString(doc.Fields, "riskLevel"); err != nil {
		return RiskScore{}, err
	}
	if rs.Factors, err = decodeStrings(doc.Fields, "factors"); err != nil {
		return RiskScore{}, err
	}
	if rs.Timestamp, err = decodeMillis(doc.Fields, "timestamp"); err != nil {
		return RiskScore{}, err
	}
	return rs, nil
}

// BehaviorProfile — агрегированный поведенческий профиль пользователя.
// Хранится в коллекции behaviour_profiles.
type BehaviorProfile struct {
	// ID — идентификатор документа
	ID string `json:"id"`
	// UserID — пользователь профиля
	UserID string `json:"userId"`
	// Metrics — усреднённые поведенческие метрики (скорость набора,
	// скорость свайпа и т.п.)
	Metrics map[string]float64 `json:"metrics"`
	// SampleCount — количество сессий в профиле
	SampleCount int `json:"sampleCount"`
	// UpdatedAt — время последнего обновления, epoch-миллисекунды
	UpdatedAt int64 `json:"updatedAt"`
}

// DecodeBehaviorProfile декодирует документ коллекции behaviour_profiles.
func DecodeBehaviorProfile(doc docstore.Document) (BehaviorProfile, error) {
	var (
		bp  = BehaviorProfile{ID: doc.ID}
		err error
	)
	if bp.UserID, err = decodeString(doc.Fields, "userId"); err != nil {
		return BehaviorProfile{}, err
	}

	if raw, ok := doc.Fields["metrics"].(map[string]any); ok {
		bp.Metrics = make(map[string]float64, len(raw))
		for k := range raw {
			v, err := decodeFloat(raw, k)
			if err != nil {
				return BehaviorProfile{}, err
			}
			bp.Metrics[k] = v
		}
	}

	samples, err := decodeFloat(doc.Fields, "sampleCount")
	if err != nil {
		return BehaviorProfile{}, err
	}
	bp.SampleCount = int(samples)

	if bp.UpdatedAt, err = decodeMillis(doc.Fields, "updatedAt"); err != nil {
		return BehaviorProfile{}, err
	}
	return bp, nil
}
