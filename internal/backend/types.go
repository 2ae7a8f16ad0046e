package backend

// Wire shapes of the analysis service. Responses are decoded leniently by
// the normalize package; these types document the contract and feed the
// schema generator.

// IngestRequest is the body of the ingestion submission.
type IngestRequest struct {
	Path string `json:"path" jsonschema:"required,description=Directory on the backend host to ingest"`
}

// IngestAck is the ingestion submission response.
type IngestAck struct {
	Message    string `json:"message" jsonschema:"description=Human readable result; contains '0 files' when nothing matched"`
	FilesFound *int   `json:"files_found,omitempty" jsonschema:"description=Optional structured file count"`
}

// ProgressStatus is the ingestion progress response.
type ProgressStatus struct {
	Progress int    `json:"progress" jsonschema:"minimum=0,maximum=100"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty" jsonschema:"description=Non-empty when the job failed"`
}

// ChatRequest is the body of a chat query.
type ChatRequest struct {
	Question string `json:"question" jsonschema:"required"`
}

// ChatImage is the structured form of a media reference.
type ChatImage struct {
	Src    string `json:"src" jsonschema:"required"`
	Source string `json:"source,omitempty"`
	Page   *int   `json:"page,omitempty"`
}

// ChatResponse is the chat answer. Images may also be bare strings.
type ChatResponse struct {
	Answer  string      `json:"answer,omitempty"`
	Sources []string    `json:"sources,omitempty"`
	Images  []ChatImage `json:"images,omitempty" jsonschema:"description=Entries may also be bare strings"`
}

// VideoRequest is the body of a video analysis request.
type VideoRequest struct {
	URL            string `json:"url" jsonschema:"required"`
	IncludeNeutral bool   `json:"usar_neutro"`
}

// TimelinePoint is one scored moment of a video.
type TimelinePoint struct {
	Time      string   `json:"time"`
	Sentiment string   `json:"sentiment,omitempty" jsonschema:"enum=positive,enum=negative,enum=neutral,enum=positivo,enum=negativo"`
	Value     *float64 `json:"value,omitempty"`
	Word      string   `json:"word,omitempty"`
}

// VideoResponse is the video analysis result. Neutral is absent on the
// two-way backend variant.
type VideoResponse struct {
	Positive float64         `json:"positive"`
	Negative float64         `json:"negative"`
	Neutral  *float64        `json:"neutral,omitempty"`
	Timeline []TimelinePoint `json:"timeline"`
	Summary  string          `json:"resumen,omitempty"`
}
