package output

// DatasetInfo describes one registry entry with its local state.
type DatasetInfo struct {
	Key        string `json:"key"`
	Year       string `json:"year"`
	Pair       string `json:"pair"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	SourceName string `json:"source_name"`
	TargetName string `json:"target_name"`
	Archive    string `json:"archive,omitempty"`
	Fetched    bool   `json:"fetched"`
	Extracted  bool   `json:"extracted"`
	FetchedAt  string `json:"fetched_at,omitempty"`
	LastLoaded string `json:"last_loaded,omitempty"`
}

// ListOutput is the JSON payload of the list command.
type ListOutput struct {
	Datasets []DatasetInfo `json:"datasets"`
	Summary  ListSummary   `json:"summary"`
}

// ListSummary aggregates the list command counts.
type ListSummary struct {
	Total   int `json:"total"`
	Fetched int `json:"fetched"`
	Loaded  int `json:"loaded"`
}

// FetchResult describes the outcome of fetching one dataset.
type FetchResult struct {
	Dataset    string  `json:"dataset"`
	Archive    string  `json:"archive,omitempty"`
	Downloaded bool    `json:"downloaded"`
	Extracted  bool    `json:"extracted"`
	SHA256     string  `json:"sha256,omitempty"`
	SizeBytes  int64   `json:"size_bytes,omitempty"`
	Error      *string `json:"error,omitempty"`
}

// FetchOutput is the JSON payload of the fetch command.
type FetchOutput struct {
	Results []FetchResult `json:"results"`
	Summary FetchSummary  `json:"summary"`
}

// FetchSummary aggregates the fetch command counts.
type FetchSummary struct {
	Requested  int `json:"requested"`
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// SplitStats holds per-split counts from a load.
type SplitStats struct {
	Split        string `json:"split"`
	Pairs        int    `json:"pairs"`
	SourceTokens int    `json:"source_tokens"`
	TargetTokens int    `json:"target_tokens"`
}

// SamplePair is one aligned sentence pair shown by load --show.
type SamplePair struct {
	Source []string `json:"source"`
	Target []string `json:"target"`
}

// LoadOutput is the JSON payload of the load command.
type LoadOutput struct {
	Dataset    string       `json:"dataset"`
	EOS        string       `json:"eos,omitempty"`
	Splits     []SplitStats `json:"splits"`
	TotalPairs int          `json:"total_pairs"`
	DurationMS int64        `json:"duration_ms"`
	Samples    []SamplePair `json:"samples,omitempty"`
}

// SplitReport holds streaming statistics for one split.
type SplitReport struct {
	Split         string  `json:"split"`
	Pairs         int     `json:"pairs"`
	Skipped       int     `json:"skipped"`
	SourceTokens  int     `json:"source_tokens"`
	TargetTokens  int     `json:"target_tokens"`
	MinSourceLen  int     `json:"min_source_len"`
	MeanSourceLen float64 `json:"mean_source_len"`
	MaxSourceLen  int     `json:"max_source_len"`
}

// StatsOutput is the JSON payload of the stats command.
type StatsOutput struct {
	Dataset string        `json:"dataset"`
	Splits  []SplitReport `json:"splits"`
}

// CheckResult is one verify health check.
type CheckResult struct {
	Group  string `json:"group"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// VerifyOutput is the JSON payload of the verify command.
type VerifyOutput struct {
	Dataset string        `json:"dataset"`
	Checks  []CheckResult `json:"checks"`
	Summary VerifySummary `json:"summary"`
}

// VerifySummary aggregates check outcomes; OK is false when any check failed.
type VerifySummary struct {
	Passed int  `json:"passed"`
	Warned int  `json:"warned"`
	Failed int  `json:"failed"`
	OK     bool `json:"ok"`
}
