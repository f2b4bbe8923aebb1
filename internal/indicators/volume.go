package indicators

import "github.com/ducminhle1904/token-strategy-lab/pkg/types"

const DefaultVolumePeriod = 20

// CalculateVolumeStats compares the latest volume with its 20-bar average.
// The ratio is 1 when there is no volume data or the average is zero.
func CalculateVolumeStats(volumes []float64) types.VolumeStats {
	if len(volumes) == 0 {
		return types.VolumeStats{VolumeRatio: 1}
	}

	ma := CalculateSMA(volumes, DefaultVolumePeriod)
	ratio := 1.0
	if ma != 0 {
		ratio = volumes[len(volumes)-1] / ma
	}
	return types.VolumeStats{VolumeMA: ma, VolumeRatio: ratio}
}
