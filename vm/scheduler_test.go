package vm_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/hexaflex/chip8/arch"
	"github.com/hexaflex/chip8/devices/fffe/clock"
	"github.com/hexaflex/chip8/devices/fffe/cpu"
	"github.com/hexaflex/chip8/devices/fffe/headless"
	"github.com/hexaflex/chip8/vm"
)

// fakeTime is a manually advanced time source.
type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time          { return f.t }
func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func words(w ...uint16) []byte {
	out := make([]byte, 0, len(w)*2)
	for _, v := range w {
		out = append(out, byte(v>>8), byte(v))
	}
	return out
}

var _ = Describe("Scheduler", func() {
	var (
		c     *cpu.CPU
		host  *headless.Host
		ft    *fakeTime
		sched *vm.Scheduler
	)

	newScheduler := func(limit int, opts ...vm.Option) {
		c = cpu.New(cpu.WithSeed(1))
		host = headless.New(limit)
		ft = &fakeTime{t: time.Unix(1000, 0)}

		opts = append([]vm.Option{
			vm.WithClock(clock.New(ft.now)),
			vm.WithSleep(ft.advance),
		}, opts...)

		sched = vm.New(c, host, opts...)
		Expect(sched.Startup()).To(Succeed())
	}

	AfterEach(func() {
		Expect(sched.Shutdown()).To(Succeed())
	})

	Describe("Run", func() {
		It("should stop when the host closes", func() {
			newScheduler(3)
			Expect(sched.Load(words(0x1200))).To(Succeed())

			Expect(sched.Run(context.Background())).To(Succeed())
			Expect(host.Frames()).To(Equal(3))
			Expect(sched.Frames()).To(Equal(uint64(3)))
			Expect(sched.Cycles()).To(Equal(uint64(3 * vm.DefaultCyclesPerFrame)))
		})

		It("should flush 60 frames per simulated second", func() {
			newScheduler(arch.FrameRate)
			Expect(sched.Load(words(
				0x6030, // ld V0, $30
				0xf015, // ld DT, V0
				0x1204, // jp $204
			))).To(Succeed())

			start := ft.now()
			Expect(sched.Run(context.Background())).To(Succeed())
			elapsed := ft.now().Sub(start)

			Expect(sched.Frames()).To(Equal(uint64(arch.FrameRate)))
			Expect(sched.Cycles()).To(Equal(uint64(arch.FrameRate * vm.DefaultCyclesPerFrame)))
			Expect(elapsed).To(BeNumerically("<=", time.Second))
			Expect(elapsed).To(BeNumerically(">", time.Second-arch.FramePeriod))

			// 0x30 ticks bring the delay timer to zero; the rest must not wrap it.
			Expect(c.DelayTimer()).To(Equal(byte(0)))
		})

		It("should count down the delay timer once per frame", func() {
			newScheduler(0)
			Expect(sched.Load(words(
				0x6014, // ld V0, $14
				0xf015, // ld DT, V0
				0x1204, // jp $204
			))).To(Succeed())

			cycle := func(frames int) {
				for range frames * vm.DefaultCyclesPerFrame {
					Expect(sched.Cycle()).To(Succeed())
					ft.advance(arch.FramePeriod / vm.DefaultCyclesPerFrame)
				}
			}

			cycle(10)
			Expect(c.DelayTimer()).To(BeNumerically(">=", byte(0x14-10)))
			Expect(c.DelayTimer()).To(BeNumerically("<=", byte(0x14-9)))

			cycle(30)
			Expect(sched.Frames()).To(BeNumerically(">=", uint64(39)))
			Expect(c.DelayTimer()).To(Equal(byte(0)))
		})

		It("should stop when the context is cancelled", func() {
			newScheduler(0)
			Expect(sched.Load(words(0x1200))).To(Succeed())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Expect(sched.Run(ctx)).To(Succeed())
			Expect(sched.Cycles()).To(Equal(uint64(0)))
		})

		It("should halt on an unknown opcode", func() {
			newScheduler(0)
			Expect(sched.Load(words(0x6001, 0xffff))).To(Succeed())

			err := sched.Run(context.Background())
			Expect(err).To(HaveOccurred())

			var cerr *cpu.Error
			Expect(errors.As(err, &cerr)).To(BeTrue())
			Expect(cerr.IP).To(Equal(arch.ProgramStart + 2))
			Expect(errors.Is(err, cpu.ErrUnknownOpcode)).To(BeTrue())

			Expect(sched.Cycles()).To(Equal(uint64(1)))
			Expect(c.PC()).To(Equal(uint16(arch.ProgramStart + 2)))
		})

		It("should run the configured number of cycles per frame", func() {
			newScheduler(1, vm.WithCyclesPerFrame(4))
			Expect(sched.Load(words(0x1200))).To(Succeed())

			Expect(sched.Run(context.Background())).To(Succeed())
			Expect(sched.Frames()).To(Equal(uint64(1)))
			Expect(sched.Cycles() % 4).To(Equal(uint64(0)))
			Expect(sched.Frequency()).To(BeNumerically("~", 4*arch.FrameRate, 1))
		})
	})

	Describe("Frame", func() {
		BeforeEach(func() {
			newScheduler(0)
		})

		It("should tick the timers", func() {
			Expect(sched.Load(words(0x6005, 0xf015, 0x1204))).To(Succeed())
			Expect(sched.Cycle()).To(Succeed())
			Expect(sched.Cycle()).To(Succeed())

			sched.Frame()
			sched.Frame()
			Expect(c.DelayTimer()).To(Equal(byte(3)))
		})

		It("should push the framebuffer to the host", func() {
			Expect(sched.Load(words(0xa050, 0xd005))).To(Succeed())
			Expect(sched.Cycle()).To(Succeed())
			Expect(sched.Cycle()).To(Succeed())
			Expect(host.Pixel(0, 0)).To(Equal(byte(0)))

			sched.Frame()
			Expect(host.Frames()).To(Equal(1))
			Expect(host.Pixel(0, 0)).To(Equal(byte(1)))
			Expect(host.Pixel(3, 4)).To(Equal(byte(1)))
		})

		It("should flush on its own once a frame period has passed", func() {
			Expect(sched.Load(words(0x1200))).To(Succeed())
			Expect(sched.Cycle()).To(Succeed())
			Expect(host.Frames()).To(Equal(0))

			ft.advance(arch.FramePeriod)
			Expect(sched.Cycle()).To(Succeed())
			Expect(host.Frames()).To(Equal(1))
		})
	})

	Describe("Frame hook", func() {
		It("should call the frame hook", func() {
			calls := 0
			newScheduler(0, vm.WithFrameHook(func() { calls++ }))

			sched.Frame()
			sched.Frame()
			Expect(calls).To(Equal(2))
		})
	})

	Describe("Display wait", func() {
		program := words(
			0xa050, // ld I, $050
			0xd005, // drw V0, V0, $5
			0xd005, // drw V0, V0, $5
			0x1206, // jp $206
		)

		It("should stall a second draw until the next frame", func() {
			newScheduler(0)
			Expect(sched.Load(program)).To(Succeed())

			for range 3 {
				Expect(sched.Cycle()).To(Succeed())
			}
			Expect(c.PC()).To(Equal(uint16(0x204)))
			Expect(sched.Stalls()).To(Equal(uint64(1)))
			Expect(sched.Cycles()).To(Equal(uint64(2)))

			sched.Frame()
			Expect(sched.Cycle()).To(Succeed())
			Expect(c.PC()).To(Equal(uint16(0x206)))
			Expect(c.V(arch.VF)).To(Equal(byte(1)))
		})

		It("should not stall when disabled", func() {
			newScheduler(0, vm.WithDisplayWait(false))
			Expect(sched.Load(program)).To(Succeed())

			for range 3 {
				Expect(sched.Cycle()).To(Succeed())
			}
			Expect(c.PC()).To(Equal(uint16(0x206)))
			Expect(sched.Stalls()).To(Equal(uint64(0)))
		})
	})

	Describe("Input", func() {
		It("should poll the host keypad every cycle", func() {
			newScheduler(0)
			Expect(sched.Load(words(0xf10a, 0x1202))).To(Succeed())

			Expect(sched.Cycle()).To(Succeed())
			Expect(c.PC()).To(Equal(uint16(arch.ProgramStart)))

			host.SetKey(0x7, true)
			Expect(sched.Cycle()).To(Succeed())
			Expect(c.V(1)).To(Equal(byte(0x7)))
			Expect(c.PC()).To(Equal(uint16(0x202)))
		})
	})

	Describe("Pause", func() {
		BeforeEach(func() {
			newScheduler(0)
			Expect(sched.Load(words(0x6001, 0x6102, 0x1204))).To(Succeed())
		})

		It("should not execute while paused", func() {
			sched.Pause()
			Expect(sched.Paused()).To(BeTrue())

			Expect(sched.Cycle()).To(Succeed())
			Expect(c.PC()).To(Equal(uint16(arch.ProgramStart)))
			Expect(sched.Frequency()).To(Equal(float64(0)))
		})

		It("should single step while paused", func() {
			sched.Pause()
			Expect(sched.StepOnce()).To(Succeed())
			Expect(c.V(0)).To(Equal(byte(1)))
			Expect(c.PC()).To(Equal(uint16(0x202)))
		})

		It("should toggle", func() {
			sched.TogglePause()
			Expect(sched.Paused()).To(BeTrue())
			sched.TogglePause()
			Expect(sched.Paused()).To(BeFalse())

			Expect(sched.Cycle()).To(Succeed())
			Expect(c.PC()).To(Equal(uint16(0x202)))
		})
	})

	Describe("Load", func() {
		BeforeEach(func() {
			newScheduler(0)
		})

		It("should restore the program on reset", func() {
			Expect(sched.Load(words(0x6042, 0x1202))).To(Succeed())
			Expect(sched.Cycle()).To(Succeed())
			Expect(c.V(0)).To(Equal(byte(0x42)))

			Expect(sched.Reset()).To(Succeed())
			Expect(c.V(0)).To(Equal(byte(0)))
			Expect(c.PC()).To(Equal(uint16(arch.ProgramStart)))
			Expect(c.Memory().U16(arch.ProgramStart)).To(Equal(uint16(0x6042)))
		})

		It("should reload the program on startup", func() {
			Expect(sched.Load(words(0x6042))).To(Succeed())
			Expect(sched.Startup()).To(Succeed())
			Expect(c.Memory().U16(arch.ProgramStart)).To(Equal(uint16(0x6042)))
		})

		It("should reject oversized programs", func() {
			err := sched.Load(make([]byte, arch.MaxProgramSize+1))
			Expect(errors.Is(err, cpu.ErrProgramTooLarge)).To(BeTrue())
		})
	})
})
