package palette

import (
	"fmt"
	"image"

	"github.com/EdlinOrg/prominentcolor"
)

// prominentSampleWidth is the width the ROI is downscaled to before clustering.
const prominentSampleWidth uint = 80

// prominent clusters a downscaled copy of img. Percentages are relative to the
// sampled pixels rather than the full ROI.
func prominent(img image.Image, k int) ([]Cluster, error) {
	items, err := prominentcolor.KmeansWithAll(k, img, prominentcolor.ArgumentNoCropping, prominentSampleWidth, nil)
	if err != nil {
		return nil, fmt.Errorf("prominentcolor: %w", err)
	}

	total := 0
	for _, it := range items {
		total += it.Cnt
	}
	if total == 0 {
		return nil, fmt.Errorf("prominentcolor: no pixels sampled")
	}

	clusters := make([]Cluster, 0, len(items))
	for _, it := range items {
		if it.Cnt == 0 {
			continue
		}
		c := RGB{R: uint8(it.Color.R), G: uint8(it.Color.G), B: uint8(it.Color.B)}
		clusters = append(clusters, newCluster(c, it.Cnt, total))
	}
	sortClusters(clusters)
	return clusters, nil
}
