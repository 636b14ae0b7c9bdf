package apkpuredl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestParseVersions(t *testing.T) {
	html := `<ul class="ver-wrap">
<li><a href="/app/pkg/download/3"><div class="ver-item"><span class="ver-item-n">V3</span><span class="ver-n">2 variants</span></div></a></li>
<li><a href="/app/pkg/download/2"><div class="ver-item"><span class="ver-item-n">V2</span></div></a></li>
<li><a href="/app/pkg/download/1"><div class="ver-item"><span class="ver-item-n">V1</span></div></a></li>
</ul>`

	index, err := apkpureParser{}.ParseVersions(html)
	require.NoError(t, err)

	assert.Equal(t, 3, index.Len())
	assert.Equal(t, map[string]string{
		"V3": "/app/pkg/download/3",
		"V2": "/app/pkg/download/2",
		"V1": "/app/pkg/download/1",
	}, index.Links)
	assert.Equal(t, map[string]string{"V3": "2 variants"}, index.Variants)
	assert.Equal(t, []string{"V3", "V2", "V1"}, index.Order)
}

func TestParseVersionsDuplicateLabelLastWins(t *testing.T) {
	index, err := apkpureParser{}.ParseVersions(readTestdata(t, "versions.html"))
	require.NoError(t, err)

	assert.Equal(t, 3, index.Len())
	assert.Equal(t, []string{"V267.1.0.46.120", "V266.0.0.37.117", "V265.0.0.0.1"}, index.Order)
	assert.Equal(t, "/facebook/com.facebook.katana/download/265.0.0.0.1", index.Links["V265.0.0.0.1"])
	// the count of the first V265 item survives the second one
	assert.Equal(t, map[string]string{
		"V267.1.0.46.120": "3 variants",
		"V265.0.0.0.1":    "2 variants",
	}, index.Variants)
	assert.Equal(t, []string{"V265.0.0.0.1"}, index.Duplicates)
}

func TestParseVersionsMissingElements(t *testing.T) {
	tests := map[string]string{
		"no list":  `<div class="ver"><p>Please verify you are a human</p></div>`,
		"no link":  `<ul class="ver-wrap"><li><div class="ver-item"><span class="ver-item-n">V1</span></div></li></ul>`,
		"no label": `<ul class="ver-wrap"><li><a href="/x"><div class="ver-item"><span class="ver-n">1</span></div></a></li></ul>`,
	}
	for name, html := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := apkpureParser{}.ParseVersions(html)
			assert.ErrorIs(t, err, ErrMarkupShape)
		})
	}
}

func TestParseVersionsEmptyList(t *testing.T) {
	index, err := apkpureParser{}.ParseVersions(`<ul class="ver-wrap"></ul>`)
	require.NoError(t, err)
	assert.Equal(t, 0, index.Len())
}

func TestParseVariants(t *testing.T) {
	variants, err := apkpureParser{}.ParseVariants(readTestdata(t, "detail.html"))
	require.NoError(t, err)
	require.Len(t, variants, 4)

	archs := make([]string, 0, len(variants))
	for _, v := range variants {
		archs = append(archs, v.Architecture)
	}
	assert.Equal(t, []string{"X86", "x86", "X86_64", "armeabi-v7a"}, archs)
	assert.Equal(t, "/facebook/com.facebook.katana/download/x86-first", variants[0].Link)
	assert.Equal(t, []string{"267.1.0.46.120 (201)", "X86", "Download"}, variants[0].Cells)
}

func TestParseVariantsRowWithoutLink(t *testing.T) {
	html := `<div class="table-row"><div class="table-cell dowrap">arm64-v8a</div><div class="table-cell down"></div></div>`
	variants, err := apkpureParser{}.ParseVariants(html)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Empty(t, variants[0].Link)
}

func TestVariantMatchesIgnoresCase(t *testing.T) {
	rows := []Variant{
		{Labels: []string{"X86"}},
		{Labels: []string{"x86"}},
		{Labels: []string{"X86_64"}},
	}
	var got []bool
	for _, v := range rows {
		got = append(got, v.Matches("x86"))
	}
	assert.Equal(t, []bool{true, true, false}, got)
	assert.True(t, Variant{Labels: []string{"arm64-v8a", "x86"}}.Matches(" X86 "))
}

func TestParseFastDownload(t *testing.T) {
	href, err := apkpureParser{}.ParseFastDownload(readTestdata(t, "download.html"))
	require.NoError(t, err)
	assert.Equal(t, "/assets/facebook.apk", href)

	_, err = apkpureParser{}.ParseFastDownload(readTestdata(t, "detail.html"))
	assert.ErrorIs(t, err, ErrMarkupShape)

	_, err = apkpureParser{}.ParseFastDownload(`<div class="fast-download-box fast-bottom"><a href="/x">x</a></div>`)
	assert.ErrorIs(t, err, ErrMarkupShape)
}

func TestParseSearch(t *testing.T) {
	html := readTestdata(t, "search.html")

	path, err := apkpureParser{}.ParseSearch(html, "com.facebook.katana")
	require.NoError(t, err)
	assert.Equal(t, "/facebook/com.facebook.katana", path)

	path, err = apkpureParser{}.ParseSearch(html, "com.facebook.lite")
	require.NoError(t, err)
	assert.Equal(t, "/facebook-lite/com.facebook.lite", path)

	_, err = apkpureParser{}.ParseSearch(html, "com.facebook")
	assert.ErrorIs(t, err, ErrAppNotFound)
}
