package classify

import "railscan/internal/model"

// Fold reduces per-keyframe records into coach totals. Door counters are
// summed; engine and wagon boxes are pooled, so repeated sightings of one
// vehicle are each counted.
func Fold(records []model.ComponentRecord) model.ComponentTotals {
	totals := model.ComponentTotals{
		Engines: []model.BBox{},
		Wagons:  []model.BBox{},
	}
	for _, rec := range records {
		for _, door := range rec.Doors {
			if door.Status == model.DoorOpen {
				totals.DoorsOpen++
			} else {
				totals.DoorsClosed++
			}
		}
		totals.Engines = append(totals.Engines, rec.Engines...)
		totals.Wagons = append(totals.Wagons, rec.Wagons...)
	}
	return totals
}
