// flex_time.go
//
// Growth tracking for small software products: apps, metric history, action plans and AI suggestions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of traction-tracker.
// traction-tracker is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// traction-tracker is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with traction-tracker.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.


package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// 1e12 ms is September 2001, 1e12 s is far beyond any plausible date.
const epochMillisThreshold = 1e12

var flexTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// FlexTime is a time that can be unmarshaled from an RFC3339 string, a SQL
// style datetime string, or epoch seconds/milliseconds as a number or string.
// Zone-less values are read as UTC.
type FlexTime struct {
	time.Time
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexTime) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		return f.setEpoch(n)
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("FlexTime: unexpected type, expected string or number")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return f.setEpoch(n)
	}
	for _, layout := range flexTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			f.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("FlexTime: unrecognized time %q", s)
}

func (f *FlexTime) setEpoch(n float64) error {
	if n <= 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return fmt.Errorf("FlexTime: invalid epoch %v", n)
	}
	if n >= epochMillisThreshold {
		f.Time = time.UnixMilli(int64(n)).UTC()
	} else {
		f.Time = time.Unix(int64(n), 0).UTC()
	}
	return nil
}

// Ptr returns nil for the zero time, a pointer to the time otherwise.
func (f FlexTime) Ptr() *time.Time {
	if f.IsZero() {
		return nil
	}
	t := f.Time
	return &t
}

// FlexBool is a bool that can be unmarshaled from a JSON bool, a 0/1 number,
// or a string such as "true", "false", "1", "0", "yes" or "no".
type FlexBool bool

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexBool(b)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		switch n {
		case 0:
			*f = false
			return nil
		case 1:
			*f = true
			return nil
		}
		return fmt.Errorf("FlexBool: invalid number %v", n)
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes", "y", "on":
			*f = true
			return nil
		case "false", "0", "no", "n", "off", "":
			*f = false
			return nil
		}
		return fmt.Errorf("FlexBool: invalid bool string %q", s)
	}

	return fmt.Errorf("FlexBool: unexpected type, expected bool, number or string")
}

// Bool returns the plain bool.
func (f FlexBool) Bool() bool {
	return bool(f)
}
