package forecast

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func forecastService() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.Write([]byte(`{
				"id": "prediction1",
				"apps": ["a0", "a1"],
				"values": [[30, 1003], [32, 1200], [30, 1194]]
			}`))
		}))
}

func TestGetForecast(t *testing.T) {
	service := forecastService()
	defer service.Close()

	forecast, err := GetForecast(service.URL)
	if err != nil {
		t.Error(
			"For", "Forecast Service",
			"expected", nil,
			"got", err,
		)
	}
	if len(forecast.Tuples) != 3 {
		t.Error(
			"For", "Forecasted tuples length",
			"expected", 3,
			"got", len(forecast.Tuples),
		)
	}
}

func TestPredictorDrainsForecast(t *testing.T) {
	service := forecastService()
	defer service.Close()

	predictor, err := NewPredictor(service.URL, 2)
	if err != nil {
		t.Fatal("For", "the predictor", "expected", nil, "got", err)
	}
	count := 0
	var last []int
	for {
		tuple, ok := predictor.Next()
		if !ok {
			break
		}
		count++
		last = tuple
	}
	if count != 3 {
		t.Error(
			"For", "the number of tuples",
			"expected", 3,
			"got", count,
		)
	}
	if last[0] != 30 || last[1] != 1194 {
		t.Error(
			"For", "the last tuple",
			"expected", []int{30, 1194},
			"got", last,
		)
	}
	// The predictor is drained and cannot be restarted
	if _, ok := predictor.Next(); ok {
		t.Error(
			"For", "a drained predictor",
			"expected", false,
			"got", true,
		)
	}
}

func TestPredictorRejectsWrongWidth(t *testing.T) {
	service := forecastService()
	defer service.Close()

	if _, err := NewPredictor(service.URL, 3); err == nil {
		t.Error(
			"For", "tuples of the wrong width",
			"expected", "an error",
			"got", nil,
		)
	}
}
