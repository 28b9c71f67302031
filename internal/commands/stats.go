package commands

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"go-antiraid/pkg/util"
)

// SystemStats is a point-in-time view of the host and the bot process.
type SystemStats struct {
	Hostname     string
	OS           string
	Platform     string
	Architecture string
	Uptime       time.Duration

	CPUModel   string
	CPUCores   int
	CPUThreads int
	CPUUsage   float64

	TotalMemory   uint64
	UsedMemory    uint64
	MemoryPercent float64

	DiskTotal   uint64
	DiskUsed    uint64
	DiskPercent float64

	ProcessRSS uint64

	GoVersion  string
	GoRoutines int
	MemAlloc   uint64
	NumGC      uint32

	BotUptime time.Duration
	Guilds    int
	Latency   time.Duration
}

func (h *Handler) handleStats(ctx context.Context, req *Request) error {
	stats := h.gather()
	_, err := h.session.ChannelMessageSendComplex(req.ChannelID, &discordgo.MessageSend{
		Embeds:    createStatsEmbeds(stats),
		Reference: req.reference(),
	}, discordgo.WithContext(ctx))
	return err
}

// gatherSystemStats never fails; fields gopsutil cannot read stay zero.
func gatherSystemStats(latency, botUptime time.Duration, guilds int) *SystemStats {
	stats := &SystemStats{
		CPUThreads: runtime.NumCPU(),
		GoVersion:  runtime.Version(),
		GoRoutines: runtime.NumGoroutine(),
		BotUptime:  botUptime,
		Guilds:     guilds,
		Latency:    latency,
	}

	if hostInfo, err := host.Info(); err == nil {
		stats.Hostname = hostInfo.Hostname
		stats.OS = hostInfo.OS
		stats.Platform = hostInfo.Platform
		stats.Architecture = hostInfo.KernelArch
		stats.Uptime = time.Duration(hostInfo.Uptime) * time.Second
	}

	if cpuInfo, err := cpu.Info(); err == nil && len(cpuInfo) > 0 {
		stats.CPUModel = cpuInfo[0].ModelName
	}
	if cores, err := cpu.Counts(false); err == nil {
		stats.CPUCores = cores
	}
	if pct, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(pct) > 0 {
		stats.CPUUsage = pct[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.TotalMemory = vm.Total
		stats.UsedMemory = vm.Used
		stats.MemoryPercent = vm.UsedPercent
	}

	if du, err := disk.Usage("/"); err == nil {
		stats.DiskTotal = du.Total
		stats.DiskUsed = du.Used
		stats.DiskPercent = du.UsedPercent
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil {
			stats.ProcessRSS = info.RSS
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.MemAlloc = m.Alloc
	stats.NumGC = m.NumGC

	return stats
}

func createStatsEmbeds(stats *SystemStats) []*discordgo.MessageEmbed {
	hostEmbed := &discordgo.MessageEmbed{
		Title: "📊 System Statistics",
		Color: 0x00BFFF,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🖥️ Host",
				Value: fmt.Sprintf("**Hostname:** `%s`\n**OS:** `%s`\n**Platform:** `%s`\n**Architecture:** `%s`\n**Uptime:** `%s`",
					stats.Hostname, stats.OS, stats.Platform, stats.Architecture, util.FormatDuration(stats.Uptime)),
			},
			{
				Name: "⚡ CPU",
				Value: fmt.Sprintf("**Model:** `%s`\n**Cores:** `%d` physical, `%d` logical\n**Usage:** `%.2f%%`\n%s",
					truncateString(stats.CPUModel, 40), stats.CPUCores, stats.CPUThreads, stats.CPUUsage, util.ProgressBar(stats.CPUUsage)),
				Inline: true,
			},
			{
				Name: "💾 Memory",
				Value: fmt.Sprintf("**Used:** `%s` of `%s`\n**Usage:** `%.2f%%`\n%s",
					util.FormatBytes(stats.UsedMemory), util.FormatBytes(stats.TotalMemory), stats.MemoryPercent, util.ProgressBar(stats.MemoryPercent)),
				Inline: true,
			},
			{
				Name: "📀 Disk",
				Value: fmt.Sprintf("**Used:** `%s` of `%s`\n**Usage:** `%.2f%%`\n%s",
					util.FormatBytes(stats.DiskUsed), util.FormatBytes(stats.DiskTotal), stats.DiskPercent, util.ProgressBar(stats.DiskPercent)),
			},
		},
	}

	botEmbed := &discordgo.MessageEmbed{
		Title: "🤖 Bot & Runtime",
		Color: 0xFF1493,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🚀 Bot",
				Value: fmt.Sprintf("**Uptime:** `%s`\n**Guilds:** `%d`\n**Latency:** `%dms`",
					util.FormatDuration(stats.BotUptime), stats.Guilds, stats.Latency.Milliseconds()),
				Inline: true,
			},
			{
				Name: "🔷 Go Runtime",
				Value: fmt.Sprintf("**Version:** `%s`\n**Goroutines:** `%d`\n**GC Cycles:** `%d`\n**Heap:** `%s`\n**RSS:** `%s`",
					stats.GoVersion, stats.GoRoutines, stats.NumGC, util.FormatBytes(stats.MemAlloc), util.FormatBytes(stats.ProcessRSS)),
				Inline: true,
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	return []*discordgo.MessageEmbed{hostEmbed, botEmbed}
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
