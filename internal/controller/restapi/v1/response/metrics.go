package response

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type Metric struct {
	Name   string      `json:"name"`
	Unit   string      `json:"unit,omitempty"`
	Points []DataPoint `json:"points"`
}

type DataPoint struct {
	Attributes map[string]string `json:"attributes,omitempty"`
	Value      float64           `json:"value,omitempty"`
	Count      uint64            `json:"count,omitempty"`
	Sum        float64           `json:"sum,omitempty"`
}

// NewMetrics flattens a collection into counters and histogram summaries.
func NewMetrics(rm *metricdata.ResourceMetrics) []Metric {
	out := make([]Metric, 0)

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			item := Metric{Name: m.Name, Unit: m.Unit, Points: make([]DataPoint, 0)}

			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					item.Points = append(item.Points, DataPoint{Attributes: attrs(dp.Attributes), Value: float64(dp.Value)})
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					item.Points = append(item.Points, DataPoint{Attributes: attrs(dp.Attributes), Value: dp.Value})
				}
			case metricdata.Histogram[int64]:
				for _, dp := range data.DataPoints {
					item.Points = append(item.Points, DataPoint{Attributes: attrs(dp.Attributes), Count: dp.Count, Sum: float64(dp.Sum)})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					item.Points = append(item.Points, DataPoint{Attributes: attrs(dp.Attributes), Count: dp.Count, Sum: dp.Sum})
				}
			default:
				continue
			}

			out = append(out, item)
		}
	}

	return out
}

func attrs(set attribute.Set) map[string]string {
	if set.Len() == 0 {
		return nil
	}

	out := make(map[string]string, set.Len())
	for _, kv := range set.ToSlice() {
		out[string(kv.Key)] = kv.Value.Emit()
	}

	return out
}
