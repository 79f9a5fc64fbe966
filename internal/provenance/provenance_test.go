// SPDX-License-Identifier: Apache-2.0

package provenance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aletheiaproj/aletheia/internal/engine"
	"github.com/aletheiaproj/aletheia/internal/provenance"
	"github.com/aletheiaproj/aletheia/internal/tree"
)

func node(t *testing.T, text string) tree.Value {
	t.Helper()
	v, err := tree.Parse([]byte(text))
	require.NoError(t, err)
	return v
}

func str(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Locate
// ---------------------------------------------------------------------------

func TestLocate(t *testing.T) {
	tests := []struct {
		name      string
		store     string
		wantField string
	}{
		{
			name:      "active manifest resolves inside manifests",
			store:     `{"active_manifest":"urn:b","manifests":{"urn:a":{"which":"a"},"urn:b":{"which":"b"}},"which":"root"}`,
			wantField: "b",
		},
		{
			name:      "missing active_manifest falls back to the store",
			store:     `{"manifests":{"urn:a":{"which":"a"}},"which":"root"}`,
			wantField: "root",
		},
		{
			name:      "unresolved id falls back to the store",
			store:     `{"active_manifest":"urn:zzz","manifests":{"urn:a":{"which":"a"}},"which":"root"}`,
			wantField: "root",
		},
		{
			name:      "non-string id falls back to the store",
			store:     `{"active_manifest":7,"manifests":{"urn:a":{"which":"a"}},"which":"root"}`,
			wantField: "root",
		},
		{
			name:      "manifests of the wrong shape fall back to the store",
			store:     `{"active_manifest":"urn:a","manifests":[{"which":"a"}],"which":"root"}`,
			wantField: "root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := provenance.Locate(node(t, tt.store))
			assert.Equal(t, tt.wantField, got.Get("which").StringOr(""))
		})
	}
}

// ---------------------------------------------------------------------------
// Classify
// ---------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     provenance.StatusCode
	}{
		{
			name:     "expired credential wins over a present claim",
			manifest: `{"claim_generator":"X","validation_status":[{"code":"signingCredential.expired"}]}`,
			want:     provenance.StatusExpired,
		},
		{
			name:     "expired fragment anywhere in the code",
			manifest: `{"validation_status":[{"code":"timeStamp.expired.v2"}]}`,
			want:     provenance.StatusExpired,
		},
		{
			name:     "invalid fragment",
			manifest: `{"assertions":[],"validation_status":[{"code":"assertion.hashedURI.invalid"}]}`,
			want:     provenance.StatusInvalid,
		},
		{
			name:     "failed fragment",
			manifest: `{"validation_status":[{"code":"claimSignature.failed"}]}`,
			want:     provenance.StatusInvalid,
		},
		{
			name:     "first matching record decides",
			manifest: `{"validation_status":[{"code":"claimSignature.failed"},{"code":"signingCredential.expired"}]}`,
			want:     provenance.StatusInvalid,
		},
		{
			name:     "non-matching and malformed records are ignored",
			manifest: `{"claim_generator":"X","validation_status":[{"code":"claimSignature.validated"},{"code":5},"junk",{}]}`,
			want:     provenance.StatusValid,
		},
		{
			name:     "signature explicitly not validated",
			manifest: `{"claim_generator":"X","signature_info":{"validated":false}}`,
			want:     provenance.StatusInvalid,
		},
		{
			name:     "non-boolean validated is ignored",
			manifest: `{"claim_generator":"X","signature_info":{"validated":"false"}}`,
			want:     provenance.StatusValid,
		},
		{
			name:     "assertions alone make a claim",
			manifest: `{"assertions":null}`,
			want:     provenance.StatusValid,
		},
		{
			name:     "claim generator of any type makes a claim",
			manifest: `{"claim_generator":{"odd":true}}`,
			want:     provenance.StatusValid,
		},
		{
			name:     "nothing recognisable",
			manifest: `{"title":"photo.jpg"}`,
			want:     provenance.StatusNone,
		},
		{
			name:     "validation_status of the wrong shape",
			manifest: `{"validation_status":{"code":"signingCredential.expired"}}`,
			want:     provenance.StatusNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, provenance.Classify(node(t, tt.manifest)))
		})
	}
}

// ---------------------------------------------------------------------------
// ExtractClaims
// ---------------------------------------------------------------------------

func TestExtractClaims(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     *provenance.Claims
	}{
		{
			name:     "generator info overrides and appends version",
			manifest: `{"claim_generator":"ACME","claim_generator_info":{"name":"ACME Pro","version":"2.0"}}`,
			want:     &provenance.Claims{Tool: str("ACME Pro 2.0")},
		},
		{
			name:     "version appended to legacy generator",
			manifest: `{"claim_generator":"ACME","claim_generator_info":{"version":"3"}}`,
			want:     &provenance.Claims{Tool: str("ACME 3")},
		},
		{
			name:     "version appended to an empty tool",
			manifest: `{"claim_generator":"","claim_generator_info":{"version":"3"}}`,
			want:     &provenance.Claims{Tool: str(" 3")},
		},
		{
			name:     "version without any tool is dropped",
			manifest: `{"claim_generator_info":{"version":"3"},"metadata":{"dateTime":"2024-01-01T00:00:00Z"}}`,
			want:     &provenance.Claims{Date: str("2024-01-01T00:00:00Z")},
		},
		{
			name:     "non-string version appends empty text",
			manifest: `{"claim_generator_info":{"name":"Cam","version":2}}`,
			want:     &provenance.Claims{Tool: str("Cam ")},
		},
		{
			name: "creator from author array and title from creative work",
			manifest: `{"assertions":[
				{"label":"stds.schema-org.creativeWork.v1","data":{"author":[{"name":"Ada"},{"name":"Bob"}],"name":"Sunset"}},
				{"label":"stds.schema-org.creativeWork","data":{"author":[{"name":"Cy"}],"name":"Dawn"}}
			]}`,
			want: &provenance.Claims{Creator: str("Cy"), Title: str("Dawn")},
		},
		{
			name:     "creator from author object",
			manifest: `{"assertions":[{"label":"c2pa.creator.v1","data":{"author":{"name":"Ada"},"name":"not a title"}}]}`,
			want:     &provenance.Claims{Creator: str("Ada")},
		},
		{
			name: "last matching assertion wins",
			manifest: `{"assertions":[
				{"label":"creator","data":{"author":{"name":"First"}}},
				{"label":"creator","data":{"author":{"name":"Second"}}}
			]}`,
			want: &provenance.Claims{Creator: str("Second")},
		},
		{
			name:     "date falls back to signature time",
			manifest: `{"signature_info":{"time":"2023-05-05T10:00:00Z"}}`,
			want:     &provenance.Claims{Date: str("2023-05-05T10:00:00Z")},
		},
		{
			name:     "metadata date preferred over signature time",
			manifest: `{"metadata":{"dateTime":"2024-01-01T00:00:00Z"},"signature_info":{"time":"2023-05-05T10:00:00Z"}}`,
			want:     &provenance.Claims{Date: str("2024-01-01T00:00:00Z")},
		},
		{
			name:     "nothing found omits claims",
			manifest: `{"assertions":[{"label":"c2pa.actions","data":{"actions":[]}}],"signature_info":{"validated":true}}`,
			want:     nil,
		},
		{
			name:     "wrong shapes are ignored",
			manifest: `{"claim_generator":42,"assertions":[{"label":"creator","data":"text"},{"label":9}],"metadata":"x"}`,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := provenance.ExtractClaims(node(t, tt.manifest))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractClaims() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// ExtractHistory
// ---------------------------------------------------------------------------

func TestExtractHistory(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     []provenance.HistoryEvent
	}{
		{
			name: "actions array with defaults",
			manifest: `{"assertions":[{"label":"c2pa.actions.v2","data":{"actions":[
				{"action":"c2pa.created","softwareAgent":"Cam 1","when":"2024-01-01T00:00:00Z"},
				{"action":"c2pa.edited","digitalSourceType":"http://cv.iptc.org/newscodes/digitalsourcetype/trainedAlgorithmicMedia"},
				{}
			]}}]}`,
			want: []provenance.HistoryEvent{
				{Action: "c2pa.created", Tool: "Cam 1", Timestamp: "2024-01-01T00:00:00Z"},
				{Action: "c2pa.edited", Tool: "http://cv.iptc.org/newscodes/digitalsourcetype/trainedAlgorithmicMedia"},
				{Action: "unknown", Tool: "Unknown"},
			},
		},
		{
			name: "single action object ignores digitalSourceType",
			manifest: `{"assertions":[{"label":"actions","data":{"action":"c2pa.opened","digitalSourceType":"x"}}]}`,
			want: []provenance.HistoryEvent{
				{Action: "c2pa.opened", Tool: "Unknown"},
			},
		},
		{
			name: "events concatenate in manifest order",
			manifest: `{"assertions":[
				{"label":"c2pa.actions","data":{"actions":[{"action":"a1"},{"action":"a2"}]}},
				{"label":"c2pa.thumbnail.claim.jpeg","data":"AAAA"},
				{"label":"c2pa.actions.v2","data":{"actions":[{"action":"b1"}]}}
			]}`,
			want: []provenance.HistoryEvent{
				{Action: "a1", Tool: "Unknown"},
				{Action: "a2", Tool: "Unknown"},
				{Action: "b1", Tool: "Unknown"},
			},
		},
		{
			name:     "fallback created event",
			manifest: `{"claim_generator":"Camera X","metadata":{"dateTime":"2024-01-01T00:00:00Z"}}`,
			want: []provenance.HistoryEvent{
				{Action: "created", Tool: "Camera X", Timestamp: "2024-01-01T00:00:00Z"},
			},
		},
		{
			name:     "fallback when action assertions are empty",
			manifest: `{"claim_generator":"Camera X","assertions":[{"label":"c2pa.actions","data":{"actions":[]}}]}`,
			want: []provenance.HistoryEvent{
				{Action: "created", Tool: "Camera X"},
			},
		},
		{
			name:     "no generator and no actions",
			manifest: `{"assertions":[{"label":"c2pa.actions","data":"nope"}]}`,
			want:     []provenance.HistoryEvent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := provenance.ExtractHistory(node(t, tt.manifest))
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// ExtractThumbnail
// ---------------------------------------------------------------------------

func TestExtractThumbnail(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     *string
	}{
		{
			name:     "data url",
			manifest: `{"assertions":[{"label":"c2pa.thumbnail","url":"data:image/jpeg;base64,AAAA"}]}`,
			want:     str("AAAA"),
		},
		{
			name:     "inline base64 data",
			manifest: `{"assertions":[{"label":"c2pa.thumbnail.claim.jpeg","data":"BBBB"}]}`,
			want:     str("BBBB"),
		},
		{
			name: "external reference is skipped",
			manifest: `{"assertions":[
				{"label":"c2pa.thumbnail.claim.jpeg","data":{"identifier":"self#jumbf=thumb"},"url":"data:image/png;base64,SKIP"},
				{"label":"c2pa.thumbnail.ingredient","url":"data:image/png;base64,CCCC"}
			]}`,
			want: str("CCCC"),
		},
		{
			name: "first satisfying match wins",
			manifest: `{"assertions":[
				{"label":"thumbnail","data":"FIRST"},
				{"label":"thumbnail","data":"SECOND"}
			]}`,
			want: str("FIRST"),
		},
		{
			name:     "non-image data url ignored",
			manifest: `{"assertions":[{"label":"c2pa.thumbnail","url":"data:text/plain;base64,AAAA"}]}`,
			want:     nil,
		},
		{
			name:     "data url without comma ignored",
			manifest: `{"assertions":[{"label":"c2pa.thumbnail","url":"data:image/jpeg;base64"}]}`,
			want:     nil,
		},
		{
			name:     "unrelated label ignored",
			manifest: `{"assertions":[{"label":"c2pa.actions","data":"AAAA"}]}`,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, provenance.ExtractThumbnail(node(t, tt.manifest)))
		})
	}
}

// ---------------------------------------------------------------------------
// Normalize and Pipeline
// ---------------------------------------------------------------------------

const sampleStore = `{
  "active_manifest": "urn:uuid:2",
  "manifests": {
    "urn:uuid:1": {"claim_generator": "Old Tool"},
    "urn:uuid:2": {
      "claim_generator": "ACME",
      "claim_generator_info": {"name": "ACME Pro", "version": "2.0"},
      "metadata": {"dateTime": "2024-01-01T00:00:00Z"},
      "signature_info": {"validated": true, "time": "2024-01-02T00:00:00Z"},
      "assertions": [
        {"label": "stds.schema-org.creativeWork", "data": {"author": [{"name": "Ada"}], "name": "Sunset"}},
        {"label": "c2pa.actions", "data": {"actions": [{"action": "c2pa.created", "softwareAgent": "ACME Pro", "when": "2024-01-01T00:00:00Z"}]}},
        {"label": "c2pa.thumbnail.claim.jpeg", "url": "data:image/jpeg;base64,AAAA"}
      ]
    }
  }
}`

func TestNormalize_FullStore(t *testing.T) {
	got := provenance.Normalize(sampleStore)

	want := provenance.VerificationResult{
		Status: provenance.StatusValid,
		Claims: &provenance.Claims{
			Creator: str("Ada"),
			Tool:    str("ACME Pro 2.0"),
			Date:    str("2024-01-01T00:00:00Z"),
			Title:   str("Sunset"),
		},
		History: []provenance.HistoryEvent{
			{Action: "c2pa.created", Tool: "ACME Pro", Timestamp: "2024-01-01T00:00:00Z"},
		},
		Thumbnail:   str("AAAA"),
		RawManifest: str(sampleStore),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ParseFailure(t *testing.T) {
	got := provenance.Normalize("{not json")
	assert.Equal(t, provenance.StatusError, got.Status)
	require.NotNil(t, got.RawManifest)
	assert.Equal(t, "{not json", *got.RawManifest)
	assert.Nil(t, got.Claims)
	assert.NotNil(t, got.History)
}

func TestNormalize_OmitsEmptyClaims(t *testing.T) {
	got := provenance.Normalize(`{"assertions":[]}`)
	assert.Equal(t, provenance.StatusValid, got.Status)
	assert.NotContains(t, string(got.JSON()), `"claims"`)
	assert.Contains(t, string(got.JSON()), `"history":[]`)
}

func TestNormalize_Idempotent(t *testing.T) {
	first := provenance.Normalize(sampleStore).JSON()
	second := provenance.Normalize(sampleStore).JSON()
	assert.Equal(t, first, second)
}

func TestFromEngine(t *testing.T) {
	none := provenance.FromEngine("", engine.ErrNoProvenance)
	assert.Equal(t, `{"status":"none","history":[]}`, string(none.JSON()))

	wrapped := provenance.FromEngine("", errors.Join(errors.New("ctx"), engine.ErrNoProvenance))
	assert.Equal(t, provenance.StatusNone, wrapped.Status)

	failed := provenance.FromEngine("", errors.New("JUMBF box truncated"))
	assert.Equal(t, provenance.StatusError, failed.Status)
	require.NotNil(t, failed.RawManifest)
	assert.Equal(t, "Manifest extraction error: JUMBF box truncated", *failed.RawManifest)
}

type panickingEngine struct{}

func (panickingEngine) Extract(context.Context, []byte, string) (string, error) {
	panic("decoder bug")
}

func (panickingEngine) Name() string { return "panicky" }

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()
	src := provenance.MediaSource{Content: []byte{0xFF, 0xD8, 0xFF}, MediaType: "image/jpeg", ID: "a.jpg"}

	got := provenance.NewPipeline(engine.Static{Manifest: sampleStore}).Run(ctx, src)
	assert.Equal(t, provenance.StatusValid, got.Status)

	got = provenance.NewPipeline(panickingEngine{}).Run(ctx, src)
	assert.Equal(t, provenance.StatusError, got.Status)
	require.NotNil(t, got.RawManifest)
	assert.Contains(t, *got.RawManifest, "decoder bug")
}

// ---------------------------------------------------------------------------
// StatusCode
// ---------------------------------------------------------------------------

func TestStatusCode(t *testing.T) {
	tests := []struct {
		status         provenance.StatusCode
		hasCredentials bool
		description    string
	}{
		{provenance.StatusValid, true, "Valid Content Credentials - Signature Verified"},
		{provenance.StatusInvalid, true, "Invalid Signature - Data May Be Tampered"},
		{provenance.StatusExpired, true, "Credentials Found but Certificate Expired"},
		{provenance.StatusNone, false, "No Content Credentials Found"},
		{provenance.StatusError, false, "Error Verifying Image"},
		{provenance.StatusCode("bogus"), false, "Unknown Status"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.hasCredentials, tt.status.HasCredentials())
			assert.Equal(t, tt.description, tt.status.Description())
		})
	}
}

func TestParseStatus(t *testing.T) {
	got, err := provenance.ParseStatus("expired")
	require.NoError(t, err)
	assert.Equal(t, provenance.StatusExpired, got)

	_, err = provenance.ParseStatus("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}
