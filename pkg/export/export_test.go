package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fleetops/fleetd/core/model"
)

func sampleVehicles() []model.Vehicle {
	return []model.Vehicle{
		{ID: "v1", Brand: "Toyota", Model: "Corolla", Year: 2021, Status: model.StatusAvailable, TotalKilometers: 1500, KilometersSinceMaintenance: 500},
		{ID: "v2", Brand: "Renault", Model: "Zoe", Year: 2023, Status: model.StatusReserved, TotalKilometers: 200},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleVehicles()); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var got []model.Vehicle
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].ID != "v1" {
		t.Fatalf("unexpected output: %#v", got)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleVehicles()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "v1,Toyota,Corolla,2021,AVAILABLE,1500,500") {
		t.Fatalf("row: %s", lines[1])
	}
}
