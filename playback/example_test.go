package playback_test

import (
	"fmt"

	"github.com/cwbudde/wavplay/playback"
)

func ExampleGain() {
	// A 100 frame asset with a 20 frame fade-in and a 50 frame fade-out.
	for _, pos := range []int64{0, 10, 20, 50, 75, 100} {
		fmt.Printf("%3d: %.2f\n", pos, playback.Gain(pos, 100, 20, 50))
	}
	// Output:
	//   0: 0.00
	//  10: 0.50
	//  20: 1.00
	//  50: 1.00
	//  75: 0.50
	// 100: 0.00
}
