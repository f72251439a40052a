package compiler

import (
	"math"
	"strings"

	"github.com/roach88/sparqlc/internal/expr"
	"github.com/roach88/sparqlc/internal/ir"
)

// geoFragment renders the object of a geospatial property-function triple.
// It returns ok=false when the clause lacks the coordinates it needs.
//
//	nearby: (lat lng radiusKm <unit>)       radius metres -> km, 2 decimals
//	within: "POLYGON((lng lat, ...))"^^geo:wktLiteral
func (b *build) geoFragment(path string, kind filterKind, in ir.FilterInput) (string, bool, error) {
	if kind == kindNearby {
		if in.Center == nil || in.Radius == nil {
			return "", false, nil
		}
		frag := nearbyTuple(*in.Center, float64(*in.Radius), b.c.cfg.Geo.KilometreUnit)
		if err := validate(path, frag, expr.ComplexTuple); err != nil {
			return "", false, err
		}
		return frag, true, nil
	}

	if len(in.LatLngs) == 0 {
		return "", false, nil
	}
	if len(in.LatLngs) < 3 {
		return "", false, &InvalidRequestError{Path: path + ".input.latLngs", Message: "a polygon needs at least 3 points"}
	}
	frag := wktPolygon(in.LatLngs, b.c.cfg.Geo.WKTDatatype)
	if err := validate(path, frag, expr.WKTPolygon); err != nil {
		return "", false, err
	}
	return frag, true, nil
}

// nearbyTuple renders (lat lng km unit).
func nearbyTuple(center ir.LatLng, radiusMetres float64, unit string) string {
	km := math.Round(radiusMetres/1000*100) / 100
	return "(" + formatFloat(center.Lat) + " " + formatFloat(center.Lng) + " " + formatFloat(km) + " " + iriRef(unit) + ")"
}

// wktPolygon renders the ring in WKT axis order (lng lat), closing it when
// the last point differs from the first.
func wktPolygon(ring ir.LatLngList, datatype string) string {
	points := make([]string, 0, len(ring)+1)
	for _, p := range ring {
		points = append(points, formatFloat(p.Lng)+" "+formatFloat(p.Lat))
	}
	if ring[0] != ring[len(ring)-1] {
		points = append(points, points[0])
	}
	return `"POLYGON((` + strings.Join(points, ", ") + `))"^^` + iriRef(datatype)
}
