package models

// ContentType classifies what a social URL points to. It is computed once
// from the URL and never mutated afterwards.
type ContentType string

const (
	TypeFBPage      ContentType = "fb_page"
	TypeFBPost      ContentType = "fb_post"
	TypeFBGroup     ContentType = "fb_group"
	TypeFBGroupPost ContentType = "fb_group_post"
	TypeIGProfile   ContentType = "ig_profile"
	TypeIGPost      ContentType = "ig_post"
	TypeUnknown     ContentType = "unknown"
)

// IsFacebook reports whether the type is any Facebook content shape.
func (t ContentType) IsFacebook() bool {
	switch t {
	case TypeFBPage, TypeFBPost, TypeFBGroup, TypeFBGroupPost:
		return true
	}
	return false
}

// IsPost reports whether the type is a post (as opposed to the account,
// page or group that owns posts).
func (t ContentType) IsPost() bool {
	return t == TypeFBPost || t == TypeFBGroupPost || t == TypeIGPost
}

// AcquisitionMethod records which fetch tier produced the markup.
type AcquisitionMethod string

const (
	MethodDirect       AcquisitionMethod = "direct"
	MethodRendered     AcquisitionMethod = "rendered"
	MethodRenderedAuth AcquisitionMethod = "rendered_authenticated"
)

// FetchResult is the outcome of one acquisition attempt. It is owned by the
// caller that requested the fetch and is never cached across inspections.
type FetchResult struct {
	Markup string
	Method AcquisitionMethod
	OK     bool
}

// SourceHint names the strongest evidence tier that yielded any field for an
// inspected object. json > meta > text.
type SourceHint string

const (
	SourceText SourceHint = "text"
	SourceMeta SourceHint = "meta"
	SourceJSON SourceHint = "json"
)

// Note classifies a partial or empty extraction outcome.
type Note string

const (
	NoteNotFound      Note = "not_found"
	NoteRequiresLogin Note = "requires_login"
	NoteHidden        Note = "hidden"
)

// BasicMetrics is the extracted-field schema for one inspected object. Only
// the fields relevant to the object's ContentType are populated; the rest
// stay nil. Fields are filled in progressively by the extraction engine and
// the owner resolver and are never downgraded once set.
type BasicMetrics struct {
	Followers      *int64 `json:"followers,omitempty"`
	Members        *int64 `json:"members,omitempty"`
	Likes          *int64 `json:"likes,omitempty"`
	Shares         *int64 `json:"shares,omitempty"`
	PageFollowers  *int64 `json:"page_followers,omitempty"`
	GroupMembers   *int64 `json:"group_members,omitempty"`
	OwnerFollowers *int64 `json:"owner_followers,omitempty"`

	OwnerURL  string `json:"owner_url,omitempty"`
	OwnerName string `json:"owner_name,omitempty"`

	SourceHint SourceHint `json:"source_hint,omitempty"`
	Note       Note       `json:"note,omitempty"`
}

// Diagnostics describes how an inspection was carried out.
type Diagnostics struct {
	DurationMS        int64             `json:"duration_ms"`
	Method            AcquisitionMethod `json:"acquisition_method,omitempty"`
	URLWasRewritten   bool              `json:"url_was_rewritten"`
	RewrittenURL      string            `json:"rewritten_url,omitempty"`
	ResolvedPermalink string            `json:"resolved_permalink,omitempty"`
}

// Inspection status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrFetchFailed is the error code reported when neither acquisition tier
// produced markup for the primary URL.
const ErrFetchFailed = "fetch_failed"

// InspectionResult is the final envelope returned for one inspected URL.
// It is immutable after return.
type InspectionResult struct {
	URL         string        `json:"url"`
	Status      string        `json:"status"`
	ContentType ContentType   `json:"content_type"`
	Metrics     *BasicMetrics `json:"metrics,omitempty"`
	Diagnostics Diagnostics   `json:"diagnostics"`
	Error       string        `json:"error,omitempty"`
}

// Int64 returns a pointer to v, for filling optional metric fields.
func Int64(v int64) *int64 { return &v }
