package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Senior Angular Developer | Acme Corp | LinkedIn", want: "Senior Angular Developer"},
		{in: "Frontend Engineer - LinkedIn", want: "Frontend Engineer"},
		{in: "Go Developer at Globex", want: "Go Developer"},
		{in: "Backend Developer at Initech | LinkedIn", want: "Backend Developer"},
		{in: "Data Engineer | Remote", want: "Data Engineer"},
		{in: "  Plain Title  ", want: "Plain Title"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTitle(tt.in))
		})
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "attribute with angle bracket", in: `<p><a title="Salary > 50k">Apply</a> now</p>`, want: "Apply now"},
		{name: "entities and spacing", in: "<p>Full   description &amp; more</p>", want: "Full description & more"},
		{name: "block elements", in: "<ul><li>Angular</li><li>RxJS</li></ul>", want: "Angular RxJS"},
		{name: "script and style dropped", in: "<style>p{color:red}</style><p>Visible</p><script>track()</script>", want: "Visible"},
		{name: "comment dropped", in: "<p>Kept<!-- hidden --></p>", want: "Kept"},
		{name: "plain text", in: "No markup here", want: "No markup here"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}
