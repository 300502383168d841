package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/provider"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/service"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

type mockService struct {
	forecast    service.ForecastResult
	forecastErr error
	rec         service.RecommendationResult
	recErr      error
	suggestion  service.Suggestion

	gotCoord *types.Coordinate
	gotPlace types.Place
}

func (m *mockService) Forecast(ctx context.Context, coord *types.Coordinate) (service.ForecastResult, error) {
	m.gotCoord = coord
	return m.forecast, m.forecastErr
}

func (m *mockService) Recommend(ctx context.Context, coord *types.Coordinate) (service.RecommendationResult, error) {
	m.gotCoord = coord
	return m.rec, m.recErr
}

func (m *mockService) Suggest(ctx context.Context, place types.Place, coord *types.Coordinate) service.Suggestion {
	m.gotCoord = coord
	m.gotPlace = place
	return m.suggestion
}

func newTestMux(svc ForecastService) *http.ServeMux {
	mux := http.NewServeMux()
	NewForecastController(svc).RegisterRoutes(mux)
	return mux
}

func do[T any](t *testing.T, mux *http.ServeMux, target string) (int, T) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q; want application/json", ct)
	}
	var body T
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec.Code, body
}

func TestHandleForecast(t *testing.T) {
	start := time.Date(2026, 4, 2, 7, 0, 0, 0, time.UTC)

	t.Run("returns periods", func(t *testing.T) {
		m := &mockService{forecast: service.ForecastResult{
			Provider: "nws",
			Periods:  []types.Period{{StartTime: start, Temperature: 51, TemperatureUnit: "F", ShortForecast: "Fog"}},
		}}
		code, body := do[service.ForecastResult](t, newTestMux(m), "/api/v1/forecast?lat=41.88&lon=-87.63")

		if code != http.StatusOK {
			t.Fatalf("status = %d; want 200", code)
		}
		if len(body.Periods) != 1 || body.Periods[0].Temperature != 51 {
			t.Errorf("periods = %+v", body.Periods)
		}
		if m.gotCoord == nil || m.gotCoord.Lat != 41.88 || m.gotCoord.Lon != -87.63 {
			t.Errorf("coord = %v; want 41.88,-87.63", m.gotCoord)
		}
	})

	t.Run("no query uses located household", func(t *testing.T) {
		m := &mockService{}
		code, _ := do[service.ForecastResult](t, newTestMux(m), "/api/v1/forecast")
		if code != http.StatusOK {
			t.Fatalf("status = %d; want 200", code)
		}
		if m.gotCoord != nil {
			t.Errorf("coord = %v; want nil", m.gotCoord)
		}
	})

	queryErrors := []string{
		"/api/v1/forecast?lat=10",
		"/api/v1/forecast?lat=abc&lon=1",
		"/api/v1/forecast?lat=1&lon=abc",
		"/api/v1/forecast?lat=91&lon=1",
		"/api/v1/forecast?lat=1&lon=181",
		"/api/v1/forecast?lat=NaN&lon=NaN",
		"/api/v1/forecast?lat=39.7&lon=nan",
		"/api/v1/recommendation?lat=NaN&lon=1",
	}
	for _, target := range queryErrors {
		t.Run("bad query "+target, func(t *testing.T) {
			m := &mockService{}
			code, body := do[map[string]string](t, newTestMux(m), target)
			if code != http.StatusBadRequest {
				t.Errorf("status = %d; want 400", code)
			}
			if m.gotCoord != nil {
				t.Errorf("service called with %+v", *m.gotCoord)
			}
			if body["error"] != http.StatusText(http.StatusBadRequest) || body["message"] == "" {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestHandleRecommendation(t *testing.T) {
	t.Run("returns recommendation", func(t *testing.T) {
		m := &mockService{rec: service.RecommendationResult{
			Recommendation: types.Recommendation{Reason: types.ReasonCoolestDaytime, AverageTemperature: 74.5},
			Form:           service.Form{Date: "2026-07-04", Time: "09:00"},
			Message:        "Best time: Sat 9 AM - 68°F (Sunny) (Coolest daytime based on warm weather)",
		}}
		code, body := do[map[string]any](t, newTestMux(m), "/api/v1/recommendation")
		if code != http.StatusOK {
			t.Fatalf("status = %d; want 200", code)
		}
		if body["reason"] != "CoolestDaytime" || body["averageNext12hTemperature"] != 74.5 {
			t.Errorf("body = %v", body)
		}
		form, _ := body["form"].(map[string]any)
		if form["date"] != "2026-07-04" || form["time"] != "09:00" {
			t.Errorf("form = %v", form)
		}
	})

	errCases := []struct {
		err  error
		want int
	}{
		{types.ErrLocationDenied, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", types.ErrInsufficientData), http.StatusUnprocessableEntity},
		{types.ErrProviderUnavailable, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{&provider.FetchError{Provider: "nws", Stage: provider.StageForecast, Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range errCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			m := &mockService{recErr: tc.err}
			code, body := do[map[string]string](t, newTestMux(m), "/api/v1/recommendation?lat=1&lon=2")
			if code != tc.want {
				t.Errorf("status = %d; want %d", code, tc.want)
			}
			if body["message"] != tc.err.Error() {
				t.Errorf("message = %q; want %q", body["message"], tc.err.Error())
			}
		})
	}
}

func TestHandleSuggestion(t *testing.T) {
	t.Run("defaults to outside", func(t *testing.T) {
		m := &mockService{suggestion: service.Suggestion{
			Place:  types.PlaceOutside,
			Form:   service.Form{Date: "2026-02-01", Time: "11:00"},
			Notice: service.NoticeLocationDenied,
		}}
		code, body := do[service.Suggestion](t, newTestMux(m), "/api/v1/schedule/suggestion")
		if code != http.StatusOK {
			t.Fatalf("status = %d; want 200", code)
		}
		if m.gotPlace != types.PlaceOutside {
			t.Errorf("place = %q; want Outside", m.gotPlace)
		}
		if body.Notice != service.NoticeLocationDenied || body.Form.Time != "11:00" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("inside is case-insensitive", func(t *testing.T) {
		m := &mockService{}
		code, _ := do[service.Suggestion](t, newTestMux(m), "/api/v1/schedule/suggestion?place=inside")
		if code != http.StatusOK || m.gotPlace != types.PlaceInside {
			t.Errorf("status/place = %d/%q; want 200/Inside", code, m.gotPlace)
		}
	})

	t.Run("unknown place is rejected", func(t *testing.T) {
		code, _ := do[map[string]string](t, newTestMux(&mockService{}), "/api/v1/schedule/suggestion?place=garage")
		if code != http.StatusBadRequest {
			t.Errorf("status = %d; want 400", code)
		}
	})

	t.Run("bad coordinate is rejected", func(t *testing.T) {
		code, _ := do[map[string]string](t, newTestMux(&mockService{}), "/api/v1/schedule/suggestion?lat=x&lon=1")
		if code != http.StatusBadRequest {
			t.Errorf("status = %d; want 400", code)
		}
	})
}

func TestHandleMethodNotAllowed(t *testing.T) {
	mux := newTestMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendation", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d; want 405", rec.Code)
	}
}
