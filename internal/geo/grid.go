package geo

import "math"

// Lambert conformal conic parameters for the KMA village forecast grid.
// These are fixed reference constants; changing them invalidates every
// cached weather lookup keyed on a grid cell.
const (
	gridSpacingKm    = 5.0
	gridStdParallel1 = 30.0
	gridStdParallel2 = 60.0
	gridRefLon       = 126.0
	gridRefLat       = 38.0
	gridOriginX      = 43
	gridOriginY      = 136
)

// GridCell identifies a cell on the weather forecast grid.
type GridCell struct {
	NX int
	NY int
}

// WeatherGridCell projects a coordinate onto the weather forecast grid.
// The projection is deterministic: identical inputs always yield identical
// cells. Longitude differences from the reference meridian are normalized
// into [-180, 180] degrees before projecting.
func WeatherGridCell(c Coordinate) GridCell {
	const degrad = math.Pi / 180.0

	re := EarthRadiusKm / gridSpacingKm
	slat1 := gridStdParallel1 * degrad
	slat2 := gridStdParallel2 * degrad
	olon := gridRefLon * degrad
	olat := gridRefLat * degrad

	sn := math.Tan(math.Pi*0.25+slat2*0.5) / math.Tan(math.Pi*0.25+slat1*0.5)
	sn = math.Log(math.Cos(slat1)/math.Cos(slat2)) / math.Log(sn)
	sf := math.Tan(math.Pi*0.25 + slat1*0.5)
	sf = math.Pow(sf, sn) * math.Cos(slat1) / sn
	ro := math.Tan(math.Pi*0.25 + olat*0.5)
	ro = re * sf / math.Pow(ro, sn)

	ra := math.Tan(math.Pi*0.25 + c.Lat*degrad*0.5)
	ra = re * sf / math.Pow(ra, sn)

	theta := c.Lon*degrad - olon
	if theta > math.Pi {
		theta -= 2.0 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2.0 * math.Pi
	}
	theta *= sn

	x := ra*math.Sin(theta) + gridOriginX + 0.5
	y := ro - ra*math.Cos(theta) + gridOriginY + 0.5

	return GridCell{NX: int(x), NY: int(y)}
}
