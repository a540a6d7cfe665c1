/*
Copyright © contributors to CloudNativePG, established as
CloudNativePG a Series of LF Projects, LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.

SPDX-License-Identifier: Apache-2.0
*/

package instanceresize

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction describes how a class change moves the instance size
type Direction string

const (
	// DirectionDownsize moves to a smaller size
	DirectionDownsize Direction = "downsize"

	// DirectionUpsize moves to a larger size
	DirectionUpsize Direction = "upsize"

	// DirectionLateral keeps the size and changes the family
	DirectionLateral Direction = "lateral"

	// DirectionNone keeps the class
	DirectionNone Direction = "none"

	// DirectionUnknown is used when a class cannot be parsed
	DirectionUnknown Direction = "unknown"
)

// sizeRanks orders the fixed size names. "<n>xlarge" sizes are ranked
// relative to xlarge.
var sizeRanks = map[string]int{
	"nano":   1,
	"micro":  2,
	"small":  4,
	"medium": 8,
	"large":  16,
	"xlarge": 32,
}

// InstanceClass is a parsed "db.<family>.<size>" class
type InstanceClass struct {
	Family string
	Size   string
	rank   int
}

// ParseInstanceClass parses a provisioned instance class such as
// "db.r6g.2xlarge". Serverless and metal classes cannot be ranked.
func ParseInstanceClass(class string) (InstanceClass, error) {
	parts := strings.Split(strings.ToLower(class), ".")
	if len(parts) != 3 || parts[0] != "db" || parts[1] == "" {
		return InstanceClass{}, fmt.Errorf("instance class %q is not in the form db.<family>.<size>", class)
	}

	rank, err := parseSizeRank(parts[2])
	if err != nil {
		return InstanceClass{}, fmt.Errorf("instance class %q: %w", class, err)
	}

	return InstanceClass{Family: parts[1], Size: parts[2], rank: rank}, nil
}

// parseSizeRank extracts the rank from a size like "large" or "16xlarge"
func parseSizeRank(size string) (int, error) {
	if rank, ok := sizeRanks[size]; ok {
		return rank, nil
	}

	multiplier, found := strings.CutSuffix(size, "xlarge")
	if !found {
		return 0, fmt.Errorf("unknown size %q", size)
	}

	n, err := strconv.Atoi(multiplier)
	if err != nil || n < 2 {
		return 0, fmt.Errorf("failed to parse size multiplier from '%s'", size)
	}

	return n * sizeRanks["xlarge"], nil
}

// CompareClasses returns the direction of a change from current to target
func CompareClasses(current, target string) Direction {
	if current == target {
		return DirectionNone
	}

	from, err := ParseInstanceClass(current)
	if err != nil {
		return DirectionUnknown
	}
	to, err := ParseInstanceClass(target)
	if err != nil {
		return DirectionUnknown
	}

	switch {
	case to.rank < from.rank:
		return DirectionDownsize
	case to.rank > from.rank:
		return DirectionUpsize
	default:
		return DirectionLateral
	}
}
