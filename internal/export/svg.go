package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/phasespace"
)

// bounds returns a padded axis-aligned box around the given points,
// projected onto the x-y plane.
func bounds(points []linalg.Vec3) (minX, minY, rangeX, rangeY float64) {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	rangeX = maxX - minX
	rangeY = maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2
	return minX, minY, rangeX, rangeY
}

// StreamSVG renders the orbit's x-y track as a path and the stream
// particles as dots on top of it.
func StreamSVG(stream *phasespace.MockStream, orbit *phasespace.Orbit, width, height int) string {
	all := append(append([]linalg.Vec3{}, orbit.Qs()...), stream.Q...)
	if len(all) == 0 {
		return ""
	}
	minX, minY, rangeX, rangeY := bounds(all)

	toX := func(v float64) float64 { return (v - minX) / rangeX * float64(width) }
	toY := func(v float64) float64 { return float64(height) - (v-minY)/rangeY*float64(height) }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if orbit.Len() >= 2 {
		sb.WriteString(`<path fill="none" stroke="#555555" stroke-width="1" d="M`)
		for i, q := range orbit.Qs() {
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", toX(q.X), toY(q.Y)))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", toX(q.X), toY(q.Y)))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString(`<g fill="#00ff88">` + "\n")
	for _, q := range stream.Q {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="1.2"/>
`, toX(q.X), toY(q.Y)))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// OrbitSVG renders just the orbit track.
func OrbitSVG(orbit *phasespace.Orbit, width, height int, strokeColor string) string {
	qs := orbit.Qs()
	if len(qs) < 2 {
		return ""
	}
	minX, minY, rangeX, rangeY := bounds(qs)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, q := range qs {
		x := (q.X - minX) / rangeX * float64(width)
		y := float64(height) - (q.Y-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteFile renders and writes in one step.
func WriteFile(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}
