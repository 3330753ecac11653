package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/helmcode/lossnote/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleForm() model.FormData {
	return model.FormData{
		Stocks: []model.StockEntry{
			{Name: "카카오", Status: model.StatusSold, Period: "1개월 이내", Patterns: []string{"단타"}},
			{Name: "삼성전자", Status: model.StatusHolding, Period: model.PeriodCustom,
				CustomPeriod: "2024 년 1 월 5 일 ~ 2024 년 3 월 20 일", Patterns: []string{"물타기"}},
		},
		DecisionBasis: []string{"FOMO", "뉴스/공시"},
	}
}

func TestNewAnalyzeRequest(t *testing.T) {
	t.Run("last stock with custom period", func(t *testing.T) {
		req := NewAnalyzeRequest(sampleForm())
		assert.Equal(t, "삼성전자", req.Stock)
		assert.Equal(t, model.StatusHolding, req.Status)
		assert.Equal(t, "2024-01-05", req.BuyDate)
		assert.Equal(t, "2024-03-20", req.SellDate)
		assert.Equal(t, "FOMO, 뉴스/공시", req.DecisionBasis)
		assert.Len(t, req.Metadata.Stocks, 2)
	})

	t.Run("open range", func(t *testing.T) {
		data := sampleForm()
		data.Stocks[1].CustomPeriod = "2024-01-05"
		req := NewAnalyzeRequest(data)
		assert.Equal(t, "2024-01-05", req.BuyDate)
		assert.Empty(t, req.SellDate)
	})

	t.Run("non custom period", func(t *testing.T) {
		data := sampleForm()
		data.Stocks = data.Stocks[:1]
		req := NewAnalyzeRequest(data)
		assert.Equal(t, "카카오", req.Stock)
		assert.Empty(t, req.BuyDate)
		assert.Empty(t, req.SellDate)
	})

	t.Run("undecodable custom period", func(t *testing.T) {
		data := sampleForm()
		data.Stocks[1].CustomPeriod = "2024 년"
		req := NewAnalyzeRequest(data)
		assert.Empty(t, req.BuyDate)
		assert.Empty(t, req.SellDate)
	})

	t.Run("reversed custom period", func(t *testing.T) {
		data := sampleForm()
		data.Stocks[1].CustomPeriod = "2024-05-01 ~ 2024-01-01"
		req := NewAnalyzeRequest(data)
		assert.Empty(t, req.BuyDate)
		assert.Empty(t, req.SellDate)
	})

	t.Run("does not alias the form", func(t *testing.T) {
		data := sampleForm()
		req := NewAnalyzeRequest(data)
		req.Metadata.Stocks[0].Patterns[0] = "changed"
		assert.Equal(t, "단타", data.Stocks[0].Patterns[0])
	})
}

func TestAnalyzeWireBody(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"request_id":"abc"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	body, err := c.Analyze(context.Background(), sampleForm())
	require.NoError(t, err)
	assert.JSONEq(t, `{"request_id":"abc"}`, string(body))

	assert.Equal(t, "삼성전자", got["layer1_stock"])
	assert.Equal(t, "holding", got["position_status"])
	assert.Equal(t, "FOMO, 뉴스/공시", got["layer3_decision_basis"])
	meta := got["metadata"].(map[string]any)
	assert.Len(t, meta["stocks"], 2)
}

func TestChatWireBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"history":[{"role":"user","content":"q"},{"role":"assistant","content":"a"}],"message":"next"}`, string(b))
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	history := []model.ChatTurn{
		{ID: "1", Exchange: 1, Role: model.RoleUser, Content: "q"},
		{ID: "2", Exchange: 1, Role: model.RoleAssistant, Content: "a", Raw: &model.PatternAnalysis{}},
	}
	body, err := NewClient(srv.URL).Chat(context.Background(), history, "next")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"ok"}`, string(body))
}

func TestChatEmptyHistoryIsList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"history":[],"message":"hi"}`, string(b))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Chat(context.Background(), nil, "hi")
	require.NoError(t, err)
}

func TestQuizWireBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/quiz", r.URL.Path)
		var body struct {
			LPA map[string]any `json:"learning_pattern_analysis"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "잦은 물타기", body.LPA["pattern_summary"])
		rec := body.LPA["learning_recommendation"].(map[string]any)
		assert.Equal(t, "리스크 관리", rec["focus_area"])
		w.Write([]byte(`{"quiz_set":{}}`))
	}))
	defer srv.Close()

	pa := model.PatternAnalysis{Summary: "잦은 물타기"}
	pa.Recommendation.FocusArea = "리스크 관리"
	_, err := NewClient(srv.URL).Quiz(context.Background(), pa)
	require.NoError(t, err)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Analyze(context.Background(), sampleForm())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "/v1/analyze", se.Path)
	assert.Contains(t, se.Body, "boom")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, WithTimeout(50*time.Millisecond)).Chat(context.Background(), nil, "q")
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}
