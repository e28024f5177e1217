package certificate

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dlithe/intern-portal/intern-portal-backend/internal/config"
)

func testLetterhead() config.Organization {
	return config.Organization{
		LegalName:   "DLithe Consultancy Services Pvt. Ltd.",
		CIN:         "CIN: U72900KA2019PTC121035",
		FooterLine1: "Registered office: #51, 1st Main, 6th Block, 3rd Phase, BSK 3rd Stage, Bangalore - 85",
		FooterLine2: "M: 9008815252 | www.dlithe.com | info@dlithe.com",
	}
}

func testRenderInput(variant Variant) RenderInput {
	return RenderInput{
		Name:          "Asha Rao",
		USN:           "1RV21IS002",
		College:       "RV College",
		Topic:         "a realtime attendance dashboard",
		CertificateID: "DLWD1RV21IS002MAR24",
		StartDate:     "2023-12-01",
		EndDate:       "2024-03-15",
		Organization:  "DLithe",
		Letterhead:    testLetterhead(),
		Variant:       variant,
	}
}

func fixedOptions() LayoutOptions {
	opts := DefaultLayoutOptions()
	opts.CreationDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	return opts
}

// writeTestPNG writes a small image and returns its path.
func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 30, G: 60, B: 120, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestRenderWithoutAssets(t *testing.T) {
	engine := NewEngine(fixedOptions())

	content, warnings, err := engine.Render(testRenderInput(VariantFinal))
	require.NoError(t, err)
	assert.NotEmpty(t, content)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
	// Logo, seal and signature are all missing; each region reports once.
	assert.Len(t, warnings, 3)
}

func TestRenderWithAssets(t *testing.T) {
	dir := t.TempDir()
	letterhead := testLetterhead()
	letterhead.LogoPath = writeTestPNG(t, dir, "logo.png", 100, 40)
	letterhead.SealPath = writeTestPNG(t, dir, "seal.png", 80, 80)
	letterhead.SignaturePath = writeTestPNG(t, dir, "signature.png", 200, 60)

	in := testRenderInput(VariantFinal)
	in.Letterhead = letterhead

	content, warnings, err := NewEngine(fixedOptions()).Render(in)
	require.NoError(t, err)
	assert.NotEmpty(t, content)
	assert.Empty(t, warnings)
}

func TestRenderUndecodableAssetDegrades(t *testing.T) {
	dir := t.TempDir()
	badPath := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(badPath, []byte("not an image"), 0o644))

	in := testRenderInput(VariantFinal)
	in.Letterhead.LogoPath = badPath

	content, warnings, err := NewEngine(fixedOptions()).Render(in)
	require.NoError(t, err)
	assert.NotEmpty(t, content)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "logo omitted")
}

func TestRenderDeterministic(t *testing.T) {
	engine := NewEngine(fixedOptions())
	in := testRenderInput(VariantFinal)

	first, _, err := engine.Render(in)
	require.NoError(t, err)
	second, _, err := engine.Render(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderVariantsDiffer(t *testing.T) {
	engine := NewEngine(fixedOptions())

	provisional, _, err := engine.Render(testRenderInput(VariantProvisional))
	require.NoError(t, err)
	final, _, err := engine.Render(testRenderInput(VariantFinal))
	require.NoError(t, err)
	assert.NotEqual(t, provisional, final)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "it's a \"test\"", sanitizeText("it’s a “test”"))
	assert.Equal(t, "plain", sanitizeText("plain"))
}

func TestBodyTextWording(t *testing.T) {
	engine := NewEngine(fixedOptions())

	provisional := engine.bodyText(testRenderInput(VariantProvisional), "15th March 2024")
	assert.Contains(t, provisional, "is currently undergoing a 15-week internship")
	assert.Contains(t, provisional, "is working on")
	assert.Contains(t, provisional, "starting from 1st December 2023")

	final := engine.bodyText(testRenderInput(VariantFinal), "15th March 2024")
	assert.Contains(t, final, "has successfully completed a 15-week internship")
	assert.Contains(t, final, "has worked on")
	assert.Contains(t, final, "to 15th March 2024")
}
