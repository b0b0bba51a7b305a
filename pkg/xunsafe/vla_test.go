//go:build go1.23

package xunsafe_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/l-Luna/swifer/pkg/xunsafe"
)

func TestVLA(t *testing.T) {
	Convey("Given a header followed by a trailing array", t, func() {
		type header struct {
			count int64
			tail  xunsafe.VLA[int32]
		}

		// Backing storage for the header plus four elements.
		buf := make([]uint64, 4)
		h := xunsafe.Cast[header](&buf[0])
		h.count = 4

		for i := 0; i < 4; i++ {
			*h.tail.Get(i) = int32(i * 10)
		}

		Convey("Then the declared VLA field addresses the tail", func() {
			So(*h.tail.Get(0), ShouldEqual, 0)
			So(*h.tail.Get(3), ShouldEqual, 30)
			So(*h.tail.ByteGet(4), ShouldEqual, 10)
		})

		Convey("Then Beyond finds the same tail", func() {
			type bare struct {
				count int64
			}
			So(xunsafe.Beyond[int32](xunsafe.Cast[bare](h)).Get(0), ShouldEqual, h.tail.Get(0))
		})

		Convey("Then Slice views the whole tail", func() {
			So(h.tail.Slice(4), ShouldResemble, []int32{0, 10, 20, 30})
		})
	})
}
