package report

import "time"

// Metadata describes the run that produced a summary.
type Metadata struct {
	Version   string    `json:"version"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	DataFile  string    `json:"data_file,omitempty"`
	InputFile string    `json:"input_file,omitempty"`
	Outfile   string    `json:"outfile,omitempty"`
}

// FitInfo describes the solver outcome.
type FitInfo struct {
	Method         string  `json:"method"`
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	Iterations     int     `json:"iterations"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Statistics are the goodness-of-fit figures.
type Statistics struct {
	Nfev     int   `json:"nfev"`
	Ndata    int   `json:"ndata"`
	Nvarys   int   `json:"nvarys"`
	Nfree    int   `json:"nfree"`
	Chisqr   Float `json:"chisqr"`
	Redchi   Float `json:"redchi"`
	AIC      Float `json:"aic"`
	BIC      Float `json:"bic"`
	RSquared Float `json:"rsquared"`
}

// Metrics are regression metrics of fit against data.
type Metrics struct {
	MAE               Float `json:"mean_absolute_error"`
	MSE               Float `json:"mean_squared_error"`
	RMSE              Float `json:"root_mean_squared_error"`
	MaxError          Float `json:"max_error"`
	ExplainedVariance Float `json:"explained_variance"`
	R2                Float `json:"r2"`
}

// Variable is the summary of one parameter.
type Variable struct {
	Value  Float  `json:"value"`
	Stderr Float  `json:"stderr"`
	Init   Float  `json:"init_value"`
	Min    Float  `json:"min"`
	Max    Float  `json:"max"`
	Vary   bool   `json:"vary"`
	Expr   string `json:"expr,omitempty"`
}

// Correlation is one entry of the parameter correlation listing.
type Correlation struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Value Float  `json:"value"`
}

// Descriptive are the descriptive statistics of one column.
type Descriptive struct {
	Count int   `json:"count"`
	Mean  Float `json:"mean"`
	Std   Float `json:"std"`
	Min   Float `json:"min"`
	Q25   Float `json:"25%"`
	Q50   Float `json:"50%"`
	Q75   Float `json:"75%"`
	Max   Float `json:"max"`
}

// Interval is one confidence interval level.
type Interval struct {
	Sigma Float `json:"sigma"`
	Prob  Float `json:"prob"`
	Lower Float `json:"lower"`
	Upper Float `json:"upper"`
}

// ConfidenceIntervals is the CI section of the summary.
type ConfidenceIntervals struct {
	Method     string                `json:"method"`
	Parameters map[string][]Interval `json:"parameters"`
}

// Summary is serialized to <base>_summary.json.
type Summary struct {
	Metadata            Metadata                    `json:"metadata"`
	Description         map[string]any              `json:"description,omitempty"`
	Fit                 FitInfo                     `json:"fit"`
	Statistics          Statistics                  `json:"statistics"`
	Metrics             Metrics                     `json:"regression_metrics"`
	Variables           map[string]Variable         `json:"variables"`
	Correlations        []Correlation               `json:"correlations"`
	InputStatistics     map[string]Descriptive      `json:"input_statistics"`
	Descriptive         map[string]Descriptive      `json:"descriptive_statistics"`
	LinearCorrelation   map[string]map[string]Float `json:"linear_correlation"`
	ConfidenceIntervals *ConfidenceIntervals        `json:"confidence_intervals,omitempty"`
	ConfIntervalError   string                      `json:"confidence_interval_error,omitempty"`
}
