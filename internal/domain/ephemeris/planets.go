// Package ephemeris supplies planetary positions, house angles and sunrise
// and sunset times, and builds normalized charts from them.
package ephemeris

import "math"

// elements are Keplerian orbital elements at J2000 with per-century rates:
// semi-major axis (au), eccentricity, inclination, mean longitude, longitude
// of perihelion and longitude of the ascending node (degrees).
type elements struct {
	a, e, i, l, peri, node                   float64
	aDot, eDot, iDot, lDot, periDot, nodeDot float64
}

// Approximate heliocentric elements valid 1800-2050 (Standish, JPL).
var (
	earthMoonElements = elements{
		1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0,
		0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0,
	}
	mercuryElements = elements{
		0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593,
		0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081,
	}
	venusElements = elements{
		0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255,
		0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418,
	}
	marsElements = elements{
		1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
		0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343,
	}
	jupiterElements = elements{
		5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
		-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106,
	}
	saturnElements = elements{
		9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
		-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794,
	}
	uranusElements = elements{
		19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503,
		-0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589,
	}
	neptuneElements = elements{
		30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574,
		0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664,
	}
	plutoElements = elements{
		39.48211675, 0.24882730, 17.14001206, 238.92903833, 224.06891629, 110.30393684,
		-0.00031596, 0.00005170, 0.00004818, 145.20780515, -0.04062942, -0.01183482,
	}
)

// precessionPerCentury moves J2000 longitudes to the equinox of date.
const precessionPerCentury = 1.3969713

const keplerIterations = 8

// heliocentric returns J2000 ecliptic rectangular coordinates in au.
func (el elements) heliocentric(t float64) (x, y, z float64) {
	a := el.a + el.aDot*t
	e := el.e + el.eDot*t
	inc := el.i + el.iDot*t
	l := el.l + el.lDot*t
	peri := el.peri + el.periDot*t
	node := el.node + el.nodeDot*t

	omega := peri - node
	m := math.Mod(l-peri, 360)
	if m > 180 {
		m -= 360
	} else if m < -180 {
		m += 360
	}

	mr := m * degToRad
	ecc := mr + e*math.Sin(mr)
	for range keplerIterations {
		ecc -= (ecc - e*math.Sin(ecc) - mr) / (1 - e*math.Cos(ecc))
	}

	xp := a * (math.Cos(ecc) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(ecc)

	co, so := cosD(omega), sinD(omega)
	cn, sn := cosD(node), sinD(node)
	ci, si := cosD(inc), sinD(inc)

	x = (co*cn-so*sn*ci)*xp + (-so*cn-co*sn*ci)*yp
	y = (co*sn+so*cn*ci)*xp + (-so*sn+co*cn*ci)*yp
	z = (so*si)*xp + (co*si)*yp
	return x, y, z
}

// geocentricLongitude returns the planet's ecliptic longitude of date as seen
// from the Earth-Moon barycenter.
func geocentricLongitude(el elements, t float64) float64 {
	px, py, _ := el.heliocentric(t)
	ex, ey, _ := earthMoonElements.heliocentric(t)
	return norm360(atan2D(py-ey, px-ex) + precessionPerCentury*t)
}

// sunLongitude is the Sun's true geometric longitude (Meeus, low precision).
func sunLongitude(t float64) float64 {
	l0 := 280.46646 + 36000.76983*t + 0.0003032*t*t
	m := 357.52911 + 35999.05029*t - 0.0001537*t*t
	c := (1.914602-0.004817*t-0.000014*t*t)*sinD(m) +
		(0.019993-0.000101*t)*sinD(2*m) +
		0.000289*sinD(3*m)
	return norm360(l0 + c)
}

// moonLongitude keeps the six largest periodic terms of the lunar theory,
// good to a few tenths of a degree.
func moonLongitude(t float64) float64 {
	lp := 218.3164477 + 481267.88123421*t
	d := 297.8501921 + 445267.1114034*t
	m := 357.5291092 + 35999.0502909*t
	mp := 134.9633964 + 477198.8675055*t
	f := 93.2720950 + 483202.0175233*t

	return norm360(lp +
		6.289*sinD(mp) +
		1.274*sinD(2*d-mp) +
		0.658*sinD(2*d) +
		0.214*sinD(2*mp) -
		0.186*sinD(m) -
		0.114*sinD(2*f))
}
