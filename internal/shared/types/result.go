package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrAlreadySettled is returned when a result is resolved a second time
var ErrAlreadySettled = errors.New("provider result already settled")

// SourceKind identifies the family of a result provider
type SourceKind string

const (
	KindLocalModel SourceKind = "local_model"
	KindWeb        SourceKind = "web"
	KindUniversal  SourceKind = "universal"
	KindImage      SourceKind = "image"
	KindNews       SourceKind = "news"
)

// Universal subkinds
const (
	SubkindEncyclopedia = "encyclopedia"
	SubkindMusic        = "music"
	SubkindMedia        = "media"
	SubkindTravel       = "travel"
)

// Source is the identity of one configured provider. Subkind is only set
// for universal sources.
type Source struct {
	Kind    SourceKind `json:"kind"`
	Subkind string     `json:"subkind,omitempty"`
}

// String returns "kind" or "kind/subkind"
func (s Source) String() string {
	if s.Subkind == "" {
		return string(s.Kind)
	}
	return string(s.Kind) + "/" + s.Subkind
}

// MarshalText lets Source key JSON maps
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the String form
func (s *Source) UnmarshalText(text []byte) error {
	parsed, err := ParseSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSource parses "kind" or "universal/subkind"
func ParseSource(text string) (Source, error) {
	kind, sub, _ := strings.Cut(strings.TrimSpace(text), "/")
	src := Source{Kind: SourceKind(kind), Subkind: sub}
	switch src.Kind {
	case KindUniversal:
		if sub == "" {
			return Source{}, fmt.Errorf("universal source %q needs a subkind", text)
		}
	case KindLocalModel, KindWeb, KindImage, KindNews:
		if sub != "" {
			return Source{}, fmt.Errorf("source %q does not take a subkind", text)
		}
	default:
		return Source{}, fmt.Errorf("unknown source kind %q", kind)
	}
	return src, nil
}

// Universal builds a universal source with the given subkind
func Universal(subkind string) Source {
	return Source{Kind: KindUniversal, Subkind: subkind}
}

// Status is the lifecycle of a provider result within one cycle
type Status string

const (
	StatusPending Status = "pending"
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
)

// FailureReason distinguishes why a provider call failed
type FailureReason string

const (
	ReasonTimeout   FailureReason = "timeout"
	ReasonTransport FailureReason = "transport"
	ReasonMalformed FailureReason = "malformed"
	ReasonUpstream  FailureReason = "upstream"
)

// ProviderResult is the uniform envelope one provider produces per cycle
type ProviderResult struct {
	Source      Source            `json:"source"`
	Status      Status            `json:"status"`
	Items       []Item            `json:"items"`
	ErrorDetail string            `json:"error_detail,omitempty"`
	Reason      FailureReason     `json:"reason,omitempty"`
	Sequence    uint64            `json:"sequence"`
	Meta        map[string]string `json:"meta,omitempty"`
	Duration    time.Duration     `json:"-"`
}

// Pending creates an unresolved result for a source in cycle seq
func Pending(src Source, seq uint64) ProviderResult {
	return ProviderResult{Source: src, Status: StatusPending, Sequence: seq}
}

// Succeed resolves the result with items. Item identities are assigned
// from the source and position.
func (r *ProviderResult) Succeed(items []Item) error {
	if r.Status != StatusPending {
		return ErrAlreadySettled
	}
	r.Status = StatusOK
	r.Items = AssignIDs(r.Source, items)
	return nil
}

// Fail resolves the result as failed
func (r *ProviderResult) Fail(reason FailureReason, detail string) error {
	if r.Status != StatusPending {
		return ErrAlreadySettled
	}
	r.Status = StatusFailed
	r.Reason = reason
	r.ErrorDetail = detail
	r.Items = nil
	return nil
}

// OK reports whether the provider succeeded
func (r ProviderResult) OK() bool {
	return r.Status == StatusOK
}

// HasItems reports whether the result contributes anything to a layout
func (r ProviderResult) HasItems() bool {
	return r.Status == StatusOK && len(r.Items) > 0
}

// Truncate keeps the first n items in provider order
func (r *ProviderResult) Truncate(n int) {
	if n >= 0 && len(r.Items) > n {
		r.Items = r.Items[:n:n]
	}
}

// AssignIDs stamps every item with "<source>#<index>"
func AssignIDs(src Source, items []Item) []Item {
	out := make([]Item, len(items))
	prefix := src.String() + "#"
	for i, item := range items {
		item.ID = prefix + strconv.Itoa(i)
		out[i] = item
	}
	return out
}

// Bundle holds one result per configured source for a single cycle
type Bundle struct {
	Query    Query                     `json:"query"`
	Sequence uint64                    `json:"sequence"`
	Order    []Source                  `json:"order"`
	Results  map[Source]ProviderResult `json:"results"`
}

// Get returns the result for a source
func (b Bundle) Get(src Source) (ProviderResult, bool) {
	r, ok := b.Results[src]
	return r, ok
}

// OfKind returns results of one kind in configured order
func (b Bundle) OfKind(kind SourceKind) []ProviderResult {
	var out []ProviderResult
	for _, src := range b.Order {
		if src.Kind != kind {
			continue
		}
		if r, ok := b.Results[src]; ok {
			out = append(out, r)
		}
	}
	return out
}

// First returns the first configured result of a kind
func (b Bundle) First(kind SourceKind) (ProviderResult, bool) {
	rs := b.OfKind(kind)
	if len(rs) == 0 {
		return ProviderResult{}, false
	}
	return rs[0], true
}

// Failed returns failed results in configured order
func (b Bundle) Failed() []ProviderResult {
	var out []ProviderResult
	for _, src := range b.Order {
		if r, ok := b.Results[src]; ok && r.Status == StatusFailed {
			out = append(out, r)
		}
	}
	return out
}
