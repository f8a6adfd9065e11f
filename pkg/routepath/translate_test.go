package routepath

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		relPath    string
		wantMount  string
		wantParams []string
	}{
		{"route.go", "/", nil},
		{"route", "/", nil},
		{"health/route.go", "/health", nil},
		{"hospitals/route.go", "/hospitals", nil},
		{"hospitals/[id]/route.go", "/hospitals/:id", []string{"id"}},
		{"hospitals/[id]/route", "/hospitals/:id", []string{"id"}},
		{"hospitals/_id_/route.go", "/hospitals/:id", []string{"id"}},
		{"hospitals/[id]/versions/[versionId]/route.go", "/hospitals/:id/versions/:versionId", []string{"id", "versionId"}},
		{"hospitals/_id_/versions/_versionId_/route.go", "/hospitals/:id/versions/:versionId", []string{"id", "versionId"}},
		{"docs/[...slug]/route.go", "/docs/*slug", []string{"slug"}},
		{"(admin)/reports/route.go", "/reports", nil},
		{"webhooks/stripe.go", "/webhooks/stripe", nil},
		{`hospitals\[id]\route.go`, "/hospitals/:id", []string{"id"}},
	}

	for _, tt := range tests {
		t.Run(tt.relPath, func(t *testing.T) {
			got, err := Translate(tt.relPath)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMount, got.MountPath)
			if tt.wantParams == nil {
				assert.Empty(t, got.Params)
			} else {
				assert.Equal(t, tt.wantParams, got.ParamNames())
			}
		})
	}
}

func TestTranslateMarkerCountMatchesBracketCount(t *testing.T) {
	literals := []string{"hospitals", "versions", "slots", "bookings"}
	names := []string{"id", "versionId", "slotId", "bookingId"}

	for n := 0; n <= len(names); n++ {
		var segs []string
		for i, lit := range literals {
			segs = append(segs, lit)
			if i < n {
				segs = append(segs, "["+names[i]+"]")
			}
		}
		rel := strings.Join(segs, "/") + "/route.go"

		t.Run(fmt.Sprintf("%d dynamic", n), func(t *testing.T) {
			got, err := Translate(rel)
			require.NoError(t, err)

			assert.Equal(t, n, strings.Count(got.MountPath, ":"))
			assert.Equal(t, names[:n], got.ParamNames())

			// Literal segments survive unchanged and in order.
			var gotLiterals []string
			for _, seg := range strings.Split(strings.TrimPrefix(got.MountPath, "/"), "/") {
				if !strings.HasPrefix(seg, ":") {
					gotLiterals = append(gotLiterals, seg)
				}
			}
			assert.Equal(t, literals, gotLiterals)
		})
	}
}

func TestTranslateKeepsLiteralBetweenParams(t *testing.T) {
	got, err := Translate("hospitals/[id]/versions/[versionId]/route")
	require.NoError(t, err)

	segs := strings.Split(got.MountPath, "/")
	assert.Equal(t, []string{"", "hospitals", ":id", "versions", ":versionId"}, segs)
	assert.Equal(t, "[id]", got.Params[0].Segment)
	assert.Equal(t, "[versionId]", got.Params[1].Segment)
}

func TestTranslateErrors(t *testing.T) {
	tests := []struct {
		name    string
		relPath string
		errPart string
	}{
		{"duplicate param", "a/[id]/b/[id]/route.go", "duplicate param"},
		{"invalid name", "a/[1id]/route.go", "invalid param name"},
		{"empty brackets", "a/[]/route.go", "invalid param name"},
		{"catch-all not last", "a/[...rest]/b/route.go", "must be the last segment"},
		{"half bracket", "a/[id/route.go", "malformed segment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Translate(tt.relPath)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestCleanPrefix(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"/", "", false},
		{"api", "/api", false},
		{"/api/", "/api", false},
		{"//api//v1", "/api/v1", false},
		{"/api/:id", "", true},
		{"/api/..", "", true},
		{`\api`, "", true},
	}

	for _, tt := range tests {
		got, err := CleanPrefix(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "CleanPrefix(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "CleanPrefix(%q)", tt.in)
		assert.Equal(t, tt.want, got, "CleanPrefix(%q)", tt.in)
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/api/hospitals/:id", Join("/api", "/hospitals/:id"))
	assert.Equal(t, "/api", Join("/api", "/"))
	assert.Equal(t, "/", Join("", "/"))
	assert.Equal(t, "/health", Join("", "health"))
}

func TestDecodeSegment(t *testing.T) {
	got, err := DecodeSegment("abc%20123", false)
	require.NoError(t, err)
	assert.Equal(t, "abc 123", got)

	_, err = DecodeSegment("a%2Fb", false)
	assert.ErrorIs(t, err, ErrEncodedSlashInSegment)

	got, err = DecodeSegment("a%2Fb", true)
	require.NoError(t, err)
	assert.Equal(t, "a/b", got)

	_, err = DecodeSegment("%zz", false)
	assert.ErrorIs(t, err, ErrInvalidPercentEscape)
}
