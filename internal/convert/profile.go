package convert

// profileArgs builds the fixed ffmpeg argument profile: MPEG-2 video at
// 600k/800k/1200k with a short GOP and no B-frames, scaled to 640x360 at
// 24 fps, mono MP2 audio at 48k/32kHz, all CPU threads, MPEG program stream
// output. The profile is a design constant; output produced with different
// parameters is not compatible with the devices this tool targets.
func profileArgs(input, output string) []string {
	return []string{
		"-i", input,
		"-c:v", "mpeg2video",
		"-b:v", "600k",
		"-maxrate", "800k",
		"-bufsize", "1200k",
		"-g", "15",
		"-bf", "0",
		"-vf", "scale=640:360",
		"-r", "24",
		"-c:a", "mp2",
		"-b:a", "48k",
		"-ar", "32000",
		"-ac", "1",
		"-threads", "0",
		"-f", "mpeg",
		output,
	}
}
