package telematics

import (
	"fmt"
	"math/rand"

	"github.com/fleetops/fleetd/core/model"
)

// Template is one entry of the telematics event catalogue. Text is a
// fmt format string when Span is positive; the interpolated value is
// drawn uniformly from [Min, Min+Span).
type Template struct {
	Type model.ActivityType
	Text string
	Min  int
	Span int
}

// Render produces the event description, drawing the numeric value from
// r when the template carries one.
func (t Template) Render(r *rand.Rand) string {
	if t.Span <= 0 {
		return t.Text
	}
	return fmt.Sprintf(t.Text, t.Min+r.Intn(t.Span))
}

// Catalogue is the fixed set of synthetic telematics events. Selection
// is uniform over entries.
var Catalogue = []Template{
	{Type: model.ActivityEngineStarted, Text: "Engine started"},
	{Type: model.ActivityEngineStopped, Text: "Engine stopped"},
	{Type: model.ActivityDoorOpened, Text: "Driver door opened"},
	{Type: model.ActivityDoorClosed, Text: "Driver door closed"},
	{Type: model.ActivityPassengerDoor, Text: "Passenger door opened"},
	{Type: model.ActivityTrunkOpened, Text: "Trunk opened"},
	{Type: model.ActivityBonnetOpened, Text: "Bonnet opened"},
	{Type: model.ActivityHighTemperature, Text: "Engine temperature high: %d°C", Min: 95, Span: 15},
	{Type: model.ActivitySpeedExceeded, Text: "Speed exceeded limit: %d km/h", Min: 120, Span: 40},
	{Type: model.ActivitySuddenBraking, Text: "Sudden braking detected"},
	{Type: model.ActivityLowFuel, Text: "Low fuel level: %d%% remaining", Min: 5, Span: 20},
	{Type: model.ActivityLowBattery, Text: "Battery voltage low"},
	{Type: model.ActivityHighRPM, Text: "High engine RPM detected: %d RPM", Min: 5000, Span: 2000},
}

func pick(r *rand.Rand) Template {
	return Catalogue[r.Intn(len(Catalogue))]
}
