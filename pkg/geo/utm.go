package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// WGS84 ellipsoid
const (
	semiMajorAxis = 6378137.0
	flattening    = 1 / 298.257223563

	utmScale         = 0.9996
	utmFalseEasting  = 500000.0
	utmFalseNorthing = 10000000.0
)

// Krüger series coefficients (third order in n), good to well under a
// millimetre inside a zone.
var (
	tmN = flattening / (2 - flattening)
	tmA = semiMajorAxis / (1 + tmN) * (1 + tmN*tmN/4 + math.Pow(tmN, 4)/64)
	tmE = 2 * math.Sqrt(tmN) / (1 + tmN)

	tmAlpha = [3]float64{
		tmN/2 - 2*tmN*tmN/3 + 5*math.Pow(tmN, 3)/16,
		13*tmN*tmN/48 - 3*math.Pow(tmN, 3)/5,
		61 * math.Pow(tmN, 3) / 240,
	}
	tmBeta = [3]float64{
		tmN/2 - 2*tmN*tmN/3 + 37*math.Pow(tmN, 3)/96,
		tmN*tmN/48 + math.Pow(tmN, 3)/15,
		17 * math.Pow(tmN, 3) / 480,
	}
	tmDelta = [3]float64{
		2*tmN - 2*tmN*tmN/3 - 2*math.Pow(tmN, 3),
		7*tmN*tmN/3 - 8*math.Pow(tmN, 3)/5,
		56 * math.Pow(tmN, 3) / 15,
	}
)

func centralMeridian(zone int) float64 {
	return float64(zone-1)*6 - 180 + 3
}

func degreesToRadians(d float64) float64 { return d * math.Pi / 180 }
func radiansToDegrees(r float64) float64 { return r * 180 / math.Pi }

// utmToWGS84 returns a projection from easting/northing in the given zone to lon/lat
func utmToWGS84(zone int, south bool) orb.Projection {
	lambda0 := degreesToRadians(centralMeridian(zone))
	northing0 := 0.0
	if south {
		northing0 = utmFalseNorthing
	}

	return func(p orb.Point) orb.Point {
		xi := (p[1] - northing0) / (utmScale * tmA)
		eta := (p[0] - utmFalseEasting) / (utmScale * tmA)

		xiPrime := xi
		etaPrime := eta
		for j := 1; j <= 3; j++ {
			b := tmBeta[j-1]
			xiPrime -= b * math.Sin(2*float64(j)*xi) * math.Cosh(2*float64(j)*eta)
			etaPrime -= b * math.Cos(2*float64(j)*xi) * math.Sinh(2*float64(j)*eta)
		}

		chi := math.Asin(math.Sin(xiPrime) / math.Cosh(etaPrime))

		phi := chi
		for j := 1; j <= 3; j++ {
			phi += tmDelta[j-1] * math.Sin(2*float64(j)*chi)
		}

		lambda := lambda0 + math.Atan2(math.Sinh(etaPrime), math.Cos(xiPrime))

		return orb.Point{radiansToDegrees(lambda), radiansToDegrees(phi)}
	}
}

// wgs84ToUTM returns a projection from lon/lat onto easting/northing in the given zone
func wgs84ToUTM(zone int, south bool) orb.Projection {
	lambda0 := degreesToRadians(centralMeridian(zone))
	northing0 := 0.0
	if south {
		northing0 = utmFalseNorthing
	}

	return func(p orb.Point) orb.Point {
		phi := degreesToRadians(p[1])
		lambda := degreesToRadians(p[0]) - lambda0

		sinPhi := math.Sin(phi)
		t := math.Sinh(math.Atanh(sinPhi) - tmE*math.Atanh(tmE*sinPhi))

		xiPrime := math.Atan2(t, math.Cos(lambda))
		etaPrime := math.Atanh(math.Sin(lambda) / math.Sqrt(1+t*t))

		easting := etaPrime
		northing := xiPrime
		for j := 1; j <= 3; j++ {
			a := tmAlpha[j-1]
			easting += a * math.Cos(2*float64(j)*xiPrime) * math.Sinh(2*float64(j)*etaPrime)
			northing += a * math.Sin(2*float64(j)*xiPrime) * math.Cosh(2*float64(j)*etaPrime)
		}

		return orb.Point{
			utmFalseEasting + utmScale*tmA*easting,
			northing0 + utmScale*tmA*northing,
		}
	}
}
