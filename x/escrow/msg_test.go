package escrow

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/iov-one/custody/errors"
)

func TestDecodeInstruction(t *testing.T) {
	seed := uint8(254)

	cases := map[string]struct {
		raw     []byte
		want    Instruction
		wantErr *errors.Error
	}{
		"initialize": {
			raw:  []byte{0, 0xe8, 0x03, 0, 0, 0, 0, 0, 0},
			want: Initialize{Amount: 1000},
		},
		"initialize with seed": {
			raw:  []byte{0, 0xe8, 0x03, 0, 0, 0, 0, 0, 0, 254},
			want: Initialize{Amount: 1000, Seed: &seed},
		},
		"deposit": {
			raw:  []byte{1},
			want: Deposit{},
		},
		"withdraw": {
			raw:  []byte{2},
			want: Withdraw{},
		},
		"empty": {
			raw:     nil,
			wantErr: errors.ErrInvalidInstructionData,
		},
		"unknown tag": {
			raw:     []byte{3},
			wantErr: errors.ErrInvalidInstructionData,
		},
		"short amount": {
			raw:     []byte{0, 1, 2, 3},
			wantErr: errors.ErrInvalidInstructionData,
		},
		"initialize too long": {
			raw:     []byte{0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 1},
			wantErr: errors.ErrInvalidInstructionData,
		},
		"deposit with payload": {
			raw:     []byte{1, 0},
			wantErr: errors.ErrInvalidInstructionData,
		},
		"withdraw with payload": {
			raw:     []byte{2, 2},
			wantErr: errors.ErrInvalidInstructionData,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := DecodeInstruction(tc.raw)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			if init, ok := tc.want.(Initialize); ok && init.Seed != nil {
				gotInit := got.(Initialize)
				if gotInit.Seed == nil || *gotInit.Seed != *init.Seed || gotInit.Amount != init.Amount {
					t.Fatalf("want %+v, got %+v", init, gotInit)
				}
				return
			}
			if got != tc.want {
				t.Fatalf("want %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestDecoderIsTotal(t *testing.T) {
	Convey("Given any short input", t, func() {
		valid := 0
		for tag := 0; tag < 256; tag++ {
			for size := 0; size <= 11; size++ {
				raw := make([]byte, size+1)
				raw[0] = byte(tag)
				for i := 1; i < len(raw); i++ {
					raw[i] = byte(i * 31)
				}

				ix, err := DecodeInstruction(raw)
				if err != nil {
					So(errors.ErrInvalidInstructionData.Is(err), ShouldBeTrue)
					So(ix, ShouldBeNil)
					continue
				}
				valid++
				So(EncodeInstruction(ix), ShouldResemble, raw)
			}
		}

		Convey("exactly the four documented shapes decode", func() {
			// initialize with and without seed, deposit, withdraw
			So(valid, ShouldEqual, 4)
		})
	})
}

func TestEncodeInstruction(t *testing.T) {
	Convey("Initialize encodes amount little endian", t, func() {
		So(EncodeInstruction(Initialize{Amount: 1}), ShouldResemble, []byte{0, 1, 0, 0, 0, 0, 0, 0, 0})

		seed := uint8(7)
		So(EncodeInstruction(Initialize{Amount: 1 << 56, Seed: &seed}), ShouldResemble, []byte{0, 0, 0, 0, 0, 0, 0, 0, 1, 7})
	})

	Convey("Deposit and Withdraw are a single tag byte", t, func() {
		So(EncodeInstruction(Deposit{}), ShouldResemble, []byte{1})
		So(EncodeInstruction(Withdraw{}), ShouldResemble, []byte{2})
	})
}
