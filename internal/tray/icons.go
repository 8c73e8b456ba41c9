package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"github.com/tnunamak/copilotmeter/internal/display"
)

// Icon names key iconColors and the rendered PNG cache.
const (
	iconGreen  = "green"
	iconCyan   = "cyan"
	iconYellow = "yellow"
	iconRed    = "red"
	iconGray   = "gray"
)

var iconColors = map[string]color.NRGBA{
	iconGreen:  {R: 0x2e, G: 0xa0, B: 0x43, A: 0xff},
	iconCyan:   {R: 0x1f, G: 0x8f, B: 0xbf, A: 0xff},
	iconYellow: {R: 0xd2, G: 0x99, B: 0x22, A: 0xff},
	iconRed:    {R: 0xcf, G: 0x22, B: 0x2e, A: 0xff},
	iconGray:   {R: 0x8c, G: 0x95, B: 0x9f, A: 0xff},
}

var levelIcons = map[display.Level]string{
	display.LevelNominal:  iconGreen,
	display.LevelElevated: iconCyan,
	display.LevelHigh:     iconYellow,
	display.LevelCritical: iconRed,
}

// iconName picks the icon for a state: gray unless fresh usage is shown.
func iconName(st display.State) string {
	if st.Mode != display.ModeUsage || st.Usage == nil {
		return iconGray
	}
	return levelIcons[st.Usage.Level]
}

const defaultIconSize = 64

var (
	iconCacheMu sync.Mutex
	iconCache   = map[string][]byte{}
)

// iconPNG returns a filled circle of the named color at the default size.
func iconPNG(name string) []byte {
	iconCacheMu.Lock()
	defer iconCacheMu.Unlock()
	if data, ok := iconCache[name]; ok {
		return data
	}
	data := circlePNG(iconColors[name], defaultIconSize)
	iconCache[name] = data
	return data
}

// circlePNG draws a filled circle with a one pixel soft edge.
func circlePNG(c color.NRGBA, size int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	center := float64(size) / 2
	radius := center - 1
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - center
			dy := float64(y) + 0.5 - center
			d := radius - math.Sqrt(dx*dx+dy*dy)
			switch {
			case d >= 1:
				img.SetNRGBA(x, y, c)
			case d > 0:
				px := c
				px.A = uint8(float64(c.A) * d)
				img.SetNRGBA(x, y, px)
			}
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
