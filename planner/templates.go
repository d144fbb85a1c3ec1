package planner

import (
	"fmt"
	"strings"
)

// Prompt templates are versioned with the binary; changing one requires a
// rebuild. Both instruct the model to answer with bare JSON so the decode
// path stays deterministic.

const itineraryPrompt = `You are a travel planner for families with young children.
Plan a %d-day trip to %s.
%s%s
Favor stroller-friendly activities, short distances, and a midday break.

Respond with JSON only, no prose and no code fences, in this exact shape:
{"days":[{"day":1,"theme":"...","activities":[{"name":"...","description":"...","category":"park|museum|playground|food|landmark|other","indoor":false,"free":true,"minAge":0}]}]}`

const packingPrompt = `You are a packing assistant for families with young children.
Build a packing checklist for a %d-day trip to %s.
%s%s
Include child-specific gear (stroller accessories, snacks, first aid) driven by the weather.

Respond with JSON only, no prose and no code fences, in this exact shape:
{"items":[{"name":"...","category":"clothing|gear|documents|health|other","reason":"..."}]}`

func buildItineraryPrompt(trip Trip) string {
	return fmt.Sprintf(itineraryPrompt, trip.Days, trip.Destination, kidAgesLine(trip), contextLines(trip))
}

func buildPackingPrompt(trip Trip) string {
	return fmt.Sprintf(packingPrompt, trip.Days, trip.Destination, kidAgesLine(trip), contextLines(trip))
}

func kidAgesLine(trip Trip) string {
	if len(trip.KidAges) == 0 {
		return ""
	}
	ages := make([]string, len(trip.KidAges))
	for i, age := range trip.KidAges {
		ages[i] = fmt.Sprintf("%d", age)
	}
	return fmt.Sprintf("The children are aged %s.\n", strings.Join(ages, ", "))
}

func contextLines(trip Trip) string {
	var b strings.Builder
	if trip.WeatherDigest != "" {
		b.WriteString("Forecast:\n")
		b.WriteString(trip.WeatherDigest)
		b.WriteString("\n")
	}
	if trip.SafetyDigest != "" {
		b.WriteString("Area safety notes:\n")
		b.WriteString(trip.SafetyDigest)
		b.WriteString("\n")
	}
	return b.String()
}
