package domain

// CleaningReport summarizes what one cleaning pass did to a table.
type CleaningReport struct {
	Rows int `json:"rows"`
	// Missingness maps every input column to its missing fraction.
	Missingness     map[string]float64 `json:"missingness"`
	DroppedColumns  []string           `json:"dropped_columns"`
	ImputedValues   map[string]int     `json:"imputed_values"`
	Medians         map[string]float64 `json:"medians"`
	KeyFieldsUsed   []string           `json:"key_fields_used"`
	OutlierMethod   string             `json:"outlier_method"`
	OutliersFlagged bool               `json:"outliers_flagged"`
	OutlierRows     int                `json:"outlier_rows"`
}

// MetricStats is the descriptive summary of one numeric column.
type MetricStats struct {
	Field  string  `json:"field"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// HourlyMean holds the average of each profiled field for one hour of the day.
type HourlyMean struct {
	Hour    int                `json:"hour"`
	Samples int                `json:"samples"`
	Means   map[string]float64 `json:"means"`
}

// CorrelationMatrix is a square Pearson correlation matrix over Fields.
type CorrelationMatrix struct {
	Fields []string    `json:"fields"`
	Values [][]float64 `json:"values"`
}

// CleaningGroup is the mean module reading for one value of the Cleaning flag.
type CleaningGroup struct {
	Cleaning float64            `json:"cleaning"`
	Rows     int                `json:"rows"`
	Means    map[string]float64 `json:"means"`
}

// OutlierSummary counts flagged and unflagged rows.
type OutlierSummary struct {
	Flagged   int     `json:"flagged"`
	Unflagged int     `json:"unflagged"`
	Share     float64 `json:"share"`
}

// CountryMetric is the mean/median/std of one metric in one country.
type CountryMetric struct {
	Country string  `json:"country"`
	Metric  string  `json:"metric"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Std     float64 `json:"std"`
}

// RankEntry places a country in a ranking by mean value.
type RankEntry struct {
	Rank    int     `json:"rank"`
	Country string  `json:"country"`
	Mean    float64 `json:"mean"`
}
