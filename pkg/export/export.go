package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/fleetops/fleetd/core/model"
)

// WriteJSON writes the vehicle list to w in JSON format.
func WriteJSON(w io.Writer, vehicles []model.Vehicle) error {
	enc := json.NewEncoder(w)
	return enc.Encode(vehicles)
}

// WriteCSV writes the vehicle list to w in CSV format.
func WriteCSV(w io.Writer, vehicles []model.Vehicle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "brand", "model", "year", "status", "total_kilometers", "kilometers_since_maintenance"}); err != nil {
		return err
	}
	for _, v := range vehicles {
		rec := []string{
			v.ID,
			v.Brand,
			v.Model,
			strconv.Itoa(v.Year),
			string(v.Status),
			strconv.FormatFloat(v.TotalKilometers, 'f', -1, 64),
			strconv.FormatFloat(v.KilometersSinceMaintenance, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
