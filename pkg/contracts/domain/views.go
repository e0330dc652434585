package domain

import "time"

// Observation is one (record, operator) pair in long form
type Observation struct {
	Row       int       `json:"row"`
	Location  string    `json:"location"`
	Region    string    `json:"region,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"`
	Period    string    `json:"period"`
	Category  Category  `json:"category"`
	Parameter string    `json:"parameter"`
	Operator  Operator  `json:"operator"`
	Value     Value     `json:"value"`
}

// Extreme identifies the observation holding a maximum or minimum value
type Extreme struct {
	Operator Operator `json:"operator"`
	Location string   `json:"location"`
	Date     string   `json:"date"`
	Value    float64  `json:"value"`
	Row      int      `json:"row"`
}

// Extremes holds the max and min of a value set. When the values are not
// numeric Determinable is false and Max/Min are nil.
type Extremes struct {
	Determinable bool     `json:"determinable"`
	Reason       string   `json:"reason,omitempty"`
	Max          *Extreme `json:"max,omitempty"`
	Min          *Extreme `json:"min,omitempty"`
}

// LongForm is the chart-ready reshape of one parameter
type LongForm struct {
	Category     Category      `json:"category,omitempty"`
	Parameter    string        `json:"parameter"`
	Empty        bool          `json:"empty"`
	Message      string        `json:"message,omitempty"`
	Numeric      bool          `json:"numeric"`
	Observations []Observation `json:"observations"`
	Extremes     Extremes      `json:"extremes"`
}

// LatLng is a map coordinate
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IconStyle describes how a marker icon is drawn and animated
type IconStyle struct {
	Shape         string  `json:"shape"`
	Animation     string  `json:"animation"`
	PeriodSeconds float64 `json:"period_seconds"`
	DelaySeconds  float64 `json:"delay_seconds"`
	Size          [2]int  `json:"size"`
	Anchor        [2]int  `json:"anchor"`
}

// Marker is a renderer-neutral map marker descriptor
type Marker struct {
	Position  LatLng    `json:"position"`
	Category  Category  `json:"category"`
	Operator  Operator  `json:"operator"`
	Color     string    `json:"color"`
	Icon      IconStyle `json:"icon"`
	Popup     string    `json:"popup"`
	Tooltip   string    `json:"tooltip"`
	Location  string    `json:"location"`
	Region    string    `json:"region,omitempty"`
	Parameter string    `json:"parameter"`
	Value     string    `json:"value"`
	Date      string    `json:"date"`
	Cluster   bool      `json:"cluster"`
}

// LegendOperator maps an operator to its marker color
type LegendOperator struct {
	Operator Operator `json:"operator"`
	Color    string   `json:"color"`
	Hex      string   `json:"hex"`
}

// LegendCategory maps a category to its icon shape
type LegendCategory struct {
	Category  Category `json:"category"`
	Shape     string   `json:"shape"`
	Animation string   `json:"animation"`
}

// Legend explains marker colors and shapes
type Legend struct {
	Operators  []LegendOperator `json:"operators"`
	Categories []LegendCategory `json:"categories"`
}

// MarkerMap is the complete map panel
type MarkerMap struct {
	Available       bool     `json:"available"`
	Message         string   `json:"message,omitempty"`
	Center          LatLng   `json:"center"`
	Zoom            int      `json:"zoom"`
	RouteParameter  string   `json:"route_parameter,omitempty"`
	StaticParameter string   `json:"static_parameter,omitempty"`
	Markers         []Marker `json:"markers"`
	Legend          Legend   `json:"legend"`
}

// ComparisonRow is the best and worst measurement of one operator
type ComparisonRow struct {
	Operator    Operator `json:"operator"`
	Parameter   string   `json:"parameter"`
	Category    Category `json:"category"`
	MaxValue    float64  `json:"max_value"`
	MaxLocation string   `json:"max_location"`
	MaxDate     string   `json:"max_date"`
	MinValue    float64  `json:"min_value"`
	MinLocation string   `json:"min_location"`
	MinDate     string   `json:"min_date"`
}

// ComparisonTable holds one comparison row per operator with usable data
type ComparisonTable struct {
	Category  Category        `json:"category"`
	Parameter string          `json:"parameter"`
	Empty     bool            `json:"empty"`
	Message   string          `json:"message,omitempty"`
	Rows      []ComparisonRow `json:"rows"`
}

// FilterOptions lists the choices available for the next filter step
type FilterOptions struct {
	Periods             []string `json:"periods"`
	RegionFilterEnabled bool     `json:"region_filter_enabled"`
	Regions             []string `json:"regions"`
	Locations           []string `json:"locations"`
	RouteParameters     []string `json:"route_parameters"`
	StaticParameters    []string `json:"static_parameters"`
}

// OperatorProfile summarizes one operator's values for a parameter
type OperatorProfile struct {
	Operator     Operator `json:"operator"`
	Count        int      `json:"count"`
	Determinable bool     `json:"determinable"`
	Mean         float64  `json:"mean,omitempty"`
	Median       float64  `json:"median,omitempty"`
	StdDev       float64  `json:"std_dev,omitempty"`
	Min          float64  `json:"min,omitempty"`
	Max          float64  `json:"max,omitempty"`
}

// Profile holds descriptive statistics for one parameter of one category
type Profile struct {
	Category  Category          `json:"category"`
	Parameter string            `json:"parameter"`
	Empty     bool              `json:"empty"`
	Operators []OperatorProfile `json:"operators"`
}

// DashboardView bundles every panel computed for one selection
type DashboardView struct {
	Dataset          DatasetSummary  `json:"dataset"`
	Selection        FilterSelection `json:"selection"`
	Options          FilterOptions   `json:"options"`
	RecordCount      int             `json:"record_count"`
	RouteChart       LongForm        `json:"route_chart"`
	StaticChart      LongForm        `json:"static_chart"`
	Map              MarkerMap       `json:"map"`
	RouteComparison  ComparisonTable `json:"route_comparison"`
	StaticComparison ComparisonTable `json:"static_comparison"`
	Warnings         []Warning       `json:"warnings,omitempty"`
}
