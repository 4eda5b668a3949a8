package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnsupportedCRS = errors.New("unsupported coordinate reference system")

type CRSKind int

const (
	KindGeographic CRSKind = iota
	KindWebMercator
	KindUTM
	KindBritishNationalGrid
)

// CRS identifies one of the coordinate systems the reprojector understands
type CRS struct {
	EPSG  int
	Kind  CRSKind
	Zone  int
	South bool
}

var (
	WGS84       = CRS{EPSG: 4326, Kind: KindGeographic}
	WebMercator = CRS{EPSG: 3857, Kind: KindWebMercator}
	OSGB36      = CRS{EPSG: 27700, Kind: KindBritishNationalGrid}
)

func (c CRS) String() string {
	return fmt.Sprintf("EPSG:%d", c.EPSG)
}

func (c CRS) IsGeographic() bool {
	return c.Kind == KindGeographic
}

func UTM(zone int, south bool) (CRS, error) {
	if zone < 1 || zone > 60 {
		return CRS{}, fmt.Errorf("%w: utm zone %d", ErrUnsupportedCRS, zone)
	}

	code := 32600 + zone
	if south {
		code = 32700 + zone
	}

	return CRS{EPSG: code, Kind: KindUTM, Zone: zone, South: south}, nil
}

// FromEPSG maps an EPSG code onto a supported CRS
func FromEPSG(code int) (CRS, error) {
	switch {
	case code == 4326:
		return WGS84, nil
	case code == 3857 || code == 900913 || code == 3785:
		return WebMercator, nil
	case code == 27700:
		return OSGB36, nil
	case code > 32600 && code <= 32660:
		return UTM(code-32600, false)
	case code > 32700 && code <= 32760:
		return UTM(code-32700, true)
	}

	return CRS{}, fmt.Errorf("%w: EPSG:%d", ErrUnsupportedCRS, code)
}

// ParseCRS accepts the spellings found in GeoJSON crs members and config files:
// "EPSG:32738", "epsg:4326", "urn:ogc:def:crs:EPSG::3857",
// "urn:ogc:def:crs:OGC:1.3:CRS84" and a bare code.
func ParseCRS(name string) (CRS, error) {
	value := strings.TrimSpace(name)
	if value == "" {
		return CRS{}, fmt.Errorf("%w: empty name", ErrUnsupportedCRS)
	}

	upper := strings.ToUpper(value)
	if strings.HasSuffix(upper, "CRS84") {
		return WGS84, nil
	}

	if i := strings.LastIndex(upper, ":"); i >= 0 {
		if !strings.Contains(upper, "EPSG") {
			return CRS{}, fmt.Errorf("%w: %s", ErrUnsupportedCRS, name)
		}
		upper = upper[i+1:]
	}

	code, err := strconv.Atoi(upper)
	if err != nil {
		return CRS{}, fmt.Errorf("%w: %s", ErrUnsupportedCRS, name)
	}

	return FromEPSG(code)
}
