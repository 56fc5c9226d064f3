package forecast

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
)

/*Forecast is the workload prediction returned by the forecasting service:
one tuple of requests per timeslot, with one value per app*/
type Forecast struct {
	ID     string  `json:"id"`
	Apps   []string `json:"apps"`
	Tuples [][]int `json:"values"`
}

//GetForecast retrieves the predicted workload tuples from the forecasting service
func GetForecast(endpoint string) (Forecast, error) {
	forecast := Forecast{}
	response, err := http.Get(endpoint)
	if err != nil {
		return forecast, err
	}
	defer response.Body.Close()
	data, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return forecast, err
	}
	err = json.Unmarshal(data, &forecast)
	if err != nil {
		return forecast, err
	}
	return forecast, nil
}

/*Predictor yields the tuples of a retrieved forecast one timeslot at a
time, in the order the service predicted them*/
type Predictor struct {
	tuples [][]int
	index  int
}

/* Build a predictor over the forecast of an external service
	in:
		@endpoint	URL of the forecasting service
		@apps	number of apps the problem expects per tuple
	out:
		@Predictor
		@error on transport failures or tuples of the wrong width
*/
func NewPredictor(endpoint string, apps int) (*Predictor, error) {
	forecast, err := GetForecast(endpoint)
	if err != nil {
		return nil, err
	}
	for _, tuple := range forecast.Tuples {
		if len(tuple) != apps {
			return nil, errors.New("the forecast tuples do not match the number of apps")
		}
	}
	return &Predictor{tuples: forecast.Tuples}, nil
}

//Next returns the tuple of the next timeslot, or false when the forecast is over
func (p *Predictor) Next() ([]int, bool) {
	if p.index >= len(p.tuples) {
		return nil, false
	}
	tuple := p.tuples[p.index]
	p.index++
	return tuple, true
}
