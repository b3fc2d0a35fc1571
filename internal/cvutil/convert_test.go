package cvutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"puzzle-matcher/internal/raster"
	"puzzle-matcher/pkg/colorutil"
)

func TestToMat_ColorIsBGR(t *testing.T) {
	img := raster.New(5, 3, 3)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			img.SetColor(y, x, colorutil.Color{uint8(10 * x), uint8(100 + y), 250})
		}
	}

	mat := ToMat(img)
	defer mat.Close()
	require.Equal(t, gocv.MatTypeCV8UC3, mat.Type())
	assert.Equal(t, 3, mat.Rows())
	assert.Equal(t, 5, mat.Cols())
	assert.Equal(t, uint8(250), mat.GetUCharAt(2, 4*3+0), "blue first")
	assert.Equal(t, uint8(102), mat.GetUCharAt(2, 4*3+1))
	assert.Equal(t, uint8(40), mat.GetUCharAt(2, 4*3+2), "red last")

	back, err := FromMat(mat)
	require.NoError(t, err)
	assert.True(t, img.Equal(back))
}

func TestToMat_MaskIsDetached(t *testing.T) {
	mask := raster.NewMask(4, 4)
	mask.FillRect(1, 1, 2, 2, 255)

	mat := ToMat(mask)
	defer mat.Close()
	mask.Fill(0)

	require.Equal(t, gocv.MatTypeCV8U, mat.Type())
	assert.Equal(t, uint8(255), mat.GetUCharAt(1, 2))

	back, err := FromMat(mat)
	require.NoError(t, err)
	assert.Equal(t, 4, back.Count(255))
}

func TestFromMat_UnsupportedType(t *testing.T) {
	mat := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32F)
	defer mat.Close()
	_, err := FromMat(mat)
	assert.Error(t, err)
}
