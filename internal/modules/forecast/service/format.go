package service

import (
	"fmt"
	"time"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

const (
	dateLayout  = "2006-01-02"
	timeLayout  = "15:04"
	labelLayout = "Mon 3 PM"
)

// Form carries the values for the date and time inputs of the scheduling form.
type Form struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func FormFor(t time.Time) Form {
	return Form{Date: t.Format(dateLayout), Time: t.Format(timeLayout)}
}

// NextFullHour is the top of the hour after now, in now's location.
func NextFullHour(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), now.Hour()+1, 0, 0, 0, now.Location())
}

func Summary(p types.Period) string {
	return fmt.Sprintf("%d°%s, %s", p.Temperature, p.TemperatureUnit, p.ShortForecast)
}

func Label(t time.Time) string {
	return t.Format(labelLayout)
}

func Message(rec types.Recommendation, at time.Time) string {
	weather := "warm"
	if rec.Cold {
		weather = "cold"
	}
	p := rec.Period
	return fmt.Sprintf("Best time: %s - %d°%s (%s) (%s based on %s weather)",
		Label(at), p.Temperature, p.TemperatureUnit, p.ShortForecast, rec.Reason.Label(), weather)
}
