package system

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// BestEncoder returns the fastest available H.264 encoder.
func BestEncoder() string {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)

	hardware := []string{"h264_videotoolbox", "h264_nvenc"}

	for _, enc := range hardware {
		cmd := exec.Command("ffmpeg", "-encoders")
		out, err := cmd.CombinedOutput()
		if err == nil && strings.Contains(string(out), enc) {
			return enc
		}
	}

	return "libx264"
}

// DefaultEncoderQuality returns the quality setting used when none is
// configured.
func DefaultEncoderQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // битрейт = 7.5 Мбит/с
	case "h264_nvenc":
		return 28 // эквивалент CRF для NVENC
	default:
		return 23 // стандартный CRF для x264
	}
}

// Resources describes the machine the daemon is running on.
type Resources struct {
	CPUCount          int
	MemoryTotal       uint64
	MemoryAvailable   uint64
	MemoryUsedPercent float64
}

// Probe reads the current CPU and memory state.
func Probe() (Resources, error) {
	count, err := cpu.Counts(true)
	if err != nil {
		return Resources{}, err
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return Resources{}, err
	}

	return Resources{
		CPUCount:          count,
		MemoryTotal:       vm.Total,
		MemoryAvailable:   vm.Available,
		MemoryUsedPercent: vm.UsedPercent,
	}, nil
}

// perJobMemory is a conservative estimate of one running conversion:
// a decoded source image plus a canvas frame and encoder buffers.
const perJobMemory = 512 << 20

// SuggestWorkers picks a concurrent job bound from the probed
// resources: one per CPU, capped by available memory, at least one.
func SuggestWorkers(r Resources) int {
	workers := r.CPUCount
	if byMem := int(r.MemoryAvailable / perJobMemory); byMem < workers {
		workers = byMem
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
