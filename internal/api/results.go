package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"xsim/internal/model"
)

// The service stores the stats and wrong answers as JSON text columns, so
// both are sent as encoded strings.
func encodeStats(s model.Summary) (stats, wrong string, err error) {
	cs := s.CategoryStats
	if cs == nil {
		cs = map[int]model.CategoryStat{}
	}
	wa := s.WrongAnswers
	if wa == nil {
		wa = []model.WrongAnswer{}
	}
	sb, err := json.Marshal(cs)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode category stats: %w", err)
	}
	wb, err := json.Marshal(wa)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode wrong answers: %w", err)
	}
	return string(sb), string(wb), nil
}

type trainingPayload struct {
	Score         int     `json:"score"`
	Hits          int     `json:"hits"`
	Fars          int     `json:"fars"`
	Efficiency    float64 `json:"efficiency"`
	CategoryStats string  `json:"categoryStats"`
	WrongAnswers  string  `json:"wrongAnswers"`
}

// SaveTraining submits a standard training result.
func (c *Client) SaveTraining(ctx context.Context, s model.Summary) error {
	stats, wrong, err := encodeStats(s)
	if err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodPost, "/training/save", trainingPayload{
		Score:         s.Score,
		Hits:          s.Hits,
		Fars:          s.FalseAlarms,
		Efficiency:    s.Efficiency,
		CategoryStats: stats,
		WrongAnswers:  wrong,
	}, nil)
}

type correctivePayload struct {
	CorrectiveID  int     `json:"correctiveId"`
	Score         int     `json:"score"`
	Hits          int     `json:"hits"`
	Fars          int     `json:"fars"`
	HitsRate      float64 `json:"hitsRate"`
	TimeUsed      int     `json:"time_used"`
	CategoryStats string  `json:"category_stats"`
	WrongAnswers  string  `json:"wrong_answers"`
}

// SaveCorrectiveLog submits a corrective session result. time_used carries
// the credited minutes.
func (c *Client) SaveCorrectiveLog(ctx context.Context, correctiveID int, s model.Summary) error {
	stats, wrong, err := encodeStats(s)
	if err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodPost, "/correctivelog", correctivePayload{
		CorrectiveID:  correctiveID,
		Score:         s.Score,
		Hits:          s.Hits,
		Fars:          s.FalseAlarms,
		HitsRate:      s.Efficiency,
		TimeUsed:      s.Credit,
		CategoryStats: stats,
		WrongAnswers:  wrong,
	}, nil)
}

// AddCorrectiveTime credits minutes to a corrective assignment.
func (c *Client) AddCorrectiveTime(ctx context.Context, correctiveID, minutes int) error {
	body := struct {
		TimeEarned int `json:"timeEarned"`
	}{minutes}
	return c.sendJSON(ctx, http.MethodPut, "/corrective/"+strconv.Itoa(correctiveID)+"/add-time", body, nil)
}
