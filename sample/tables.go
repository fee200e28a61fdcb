package sample

import "time"

// scale returns v*mul/div as raw samples.
func scale(v []int, mul, div int) []byte {
	b := make([]byte, len(v))
	for i, x := range v {
		b[i] = byte(min(255, x*mul/div))
	}
	return b
}

var ecg = scale([]int{
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // P wave
	0, 2, 4, 6, 8, 6, 4, 2, 0, // PR segment
	0, 0, 0, 0, 0, // QRS complex
	2, 4, 8, 20, 40, 70, 30, 10, 5, 2, // ST segment
	2, 2, 2, 2, 2, 2, 2, // T wave
	2, 4, 6, 10, 14, 16, 14, 10, 6, 4, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // Baseline
}, 3, 2)

var pleth = scale([]int{
	0, 6, 12, 18, 30, 42, 60, 78, 102, 126,
	150, 174, 192, 210, 228, 240, 252, 264, 270, 276,
	282, 288, 285, 282, 288, 285, 276, 270, 264, 252,
	240, 228, 210, 192, 174, 160, 140, 130, 120, 110,
	100, 85, 75, 65, 50, 42, 35, 30,
	20, 15, 12, 10, 8, 6, 9, 12, 18, 30,
	42, 70, 100, 120, 140, 160, 180, 200, 210, 220,
	225, 230, 235, 240, 238, 236, 240, 235, 225, 210,
	195, 180, 165, 150, 130, 110, 90, 70, 50, 30,
	20, 10, 5, 0, 0, 0, 0, 0, 0, 0,
}, 1, 2)

var co2 = scale([]int{
	30, 45, 60, 75, 90, 105, 120, 135, 150, 165,
	180, 195, 210, 225, 240, 255, 255, 255, 255, 255,
	255, 255, 255, 255, 255, 240, 225, 210, 195, 180,
	165, 150, 135, 120, 105, 90, 75, 60, 45, 30,
	15, 10, 5, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 5, 10, 15, 15,
}, 1, 2)

// ECG returns a simulated sinus rhythm, one beat per second.
func ECG(now func() time.Time) *Table {
	return NewTable(ecg, time.Second, now)
}

// Pleth returns a simulated plethysmograph, one pulse every 2 seconds.
func Pleth(now func() time.Time) *Table {
	return NewTable(pleth, 2*time.Second, now)
}

// CO2 returns a simulated capnograph, one breath per second.
func CO2(now func() time.Time) *Table {
	return NewTable(co2, time.Second, now)
}

// Named returns the built-in table called name: "ecg", "pleth" or "co2".
func Named(name string, now func() time.Time) (*Table, bool) {
	switch name {
	case "ecg":
		return ECG(now), true
	case "pleth":
		return Pleth(now), true
	case "co2":
		return CO2(now), true
	}
	return nil, false
}
