package palette

import (
	"fmt"
	"image"
	"log"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultK is the number of clusters requested when the caller passes k <= 0.
const DefaultK = 3

// Engine selects the clustering implementation.
type Engine string

const (
	// EngineKMeans runs restarted Lloyd iterations over every ROI pixel.
	EngineKMeans Engine = "kmeans"
	// EngineProminent delegates to prominentcolor on a downscaled copy of the ROI.
	EngineProminent Engine = "prominent"
)

// ParseEngine maps a config value to an Engine, defaulting to EngineKMeans.
func ParseEngine(s string) Engine {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(EngineProminent):
		return EngineProminent
	default:
		return EngineKMeans
	}
}

// RGB holds an 8-bit color value.
type RGB struct {
	R, G, B uint8
}

// Hex renders the color as uppercase #RRGGBB.
func (c RGB) Hex() string {
	return strings.ToUpper(c.colorful().Hex())
}

func (c RGB) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// HSV uses the 8-bit image-library convention: H in 0-180, S and V in 0-255.
type HSV struct {
	H, S, V int
}

func (h HSV) String() string {
	return fmt.Sprintf("HSV(%d, %d, %d)", h.H, h.S, h.V)
}

// HSV converts c to the 0-180 / 0-255 / 0-255 convention. Hues that round up
// to 180 wrap to 0.
func (c RGB) HSV() HSV {
	h, s, v := c.colorful().Hsv()
	return HSV{
		H: int(math.Round(h/2)) % 180,
		S: int(math.Round(s * 255)),
		V: int(math.Round(v * 255)),
	}
}

// Cluster is one dominant color and its share of the analyzed pixels.
type Cluster struct {
	Color   RGB
	Count   int
	Percent float64
	Hex     string
	HSV     HSV
}

func newCluster(c RGB, count, total int) Cluster {
	return Cluster{
		Color:   c,
		Count:   count,
		Percent: 100 * float64(count) / float64(total),
		Hex:     c.Hex(),
		HSV:     c.HSV(),
	}
}

// Summarizer clusters ROI pixels into dominant colors.
type Summarizer struct {
	Engine Engine
	rng    *rand.Rand
}

// New returns a Summarizer. A zero seed uses the current time.
func New(engine Engine, seed int64) *Summarizer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Summarizer{Engine: engine, rng: rand.New(rand.NewSource(seed))}
}

// Summarize clusters img with the default k-means engine.
func Summarize(img image.Image, k int) []Cluster {
	return New(EngineKMeans, 0).Summarize(img, k)
}

// Summarize returns up to k clusters, most populous first. Clusters that end
// up with no pixels are omitted. An empty image yields an empty slice.
func (s *Summarizer) Summarize(img image.Image, k int) []Cluster {
	if img == nil {
		return []Cluster{}
	}
	samples := flatten(img)
	n := len(samples)
	if n == 0 {
		return []Cluster{}
	}
	if k <= 0 {
		k = DefaultK
	}
	if k > n {
		k = n
	}

	if s.Engine == EngineProminent {
		clusters, err := prominent(img, k)
		if err == nil && len(clusters) > 0 {
			return clusters
		}
		log.Printf("palette: prominent engine failed (%v), falling back to k-means", err)
	}

	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	start := time.Now()
	res := kmeans(samples, k, s.rng)
	log.Printf("palette: clustered %d pixels into k=%d in %v", n, k, time.Since(start).Round(time.Millisecond))

	clusters := make([]Cluster, 0, k)
	for i, center := range res.centers {
		if res.counts[i] == 0 {
			continue
		}
		clusters = append(clusters, newCluster(center.rgb(), res.counts[i], n))
	}
	sortClusters(clusters)
	return clusters
}

func sortClusters(clusters []Cluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Count > clusters[j].Count
	})
}

// flatten reads every pixel of img as an RGB sample, ignoring alpha.
func flatten(img image.Image) []sample {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	out := make([]sample, 0, w*h)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := rgba.PixOffset(b.Min.X, y)
			for x := 0; x < w; x++ {
				p := rgba.Pix[off+x*4 : off+x*4+3]
				out = append(out, sample{float64(p[0]), float64(p[1]), float64(p[2])})
			}
		}
		return out
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out = append(out, sample{float64(r >> 8), float64(g >> 8), float64(bl >> 8)})
		}
	}
	return out
}
