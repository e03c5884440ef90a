package scoringhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"riichi/internal/ports"
)

func TestScorePostsHandAndDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/score" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req ports.ScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.WinningTile != "6D" || !req.IsTsumo {
			t.Errorf("request not forwarded: %+v", req)
		}
		if req.GameContext.RoundWind != "east" || req.GameContext.RiichiSticks != 2 {
			t.Errorf("game context not forwarded: %+v", req.GameContext)
		}

		json.NewEncoder(w).Encode(ports.ScoreResponse{
			IsWinning:        true,
			Yaku:             []ports.YakuItem{{Code: "riichi", NameEn: "Riichi", Han: 1}},
			Han:              3,
			Fu:               30,
			TotalPoints:      6000,
			DealerPayment:    2000,
			NonDealerPayment: 1000,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	resp, err := client.Score(context.Background(), ports.ScoreRequest{
		Tiles:       []string{"2C", "3C", "4C"},
		WinningTile: "6D",
		IsTsumo:     true,
		GameContext: ports.GameContext{RoundWind: "east", RoundNumber: 1, RiichiSticks: 2},
	})
	if err != nil {
		t.Fatalf("score error: %v", err)
	}
	if !resp.IsWinning || resp.Han != 3 || resp.DealerPayment != 2000 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Yaku) != 1 || resp.Yaku[0].Code != "riichi" {
		t.Fatalf("yaku not decoded: %+v", resp.Yaku)
	}
}

func TestScoreNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	if _, err := client.Score(context.Background(), ports.ScoreRequest{}); err == nil {
		t.Fatalf("expected error on 500 response")
	}
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", srv.Client())
	if err := client.Healthy(context.Background()); err != nil {
		t.Fatalf("health error: %v", err)
	}
}
