package watch

import "testing"

func TestIsAudio(t *testing.T) {
	yes := []string{"call.mp3", "CALL.WAV", "voicemail.m4a", "msg.ogg", "/inbox/deep/call.Mp3"}
	for _, p := range yes {
		if !IsAudio(p) {
			t.Fatalf("%q should be audio", p)
		}
	}
	no := []string{"notes.txt", "call.mp3.part", "call", "image.png"}
	for _, p := range no {
		if IsAudio(p) {
			t.Fatalf("%q should not be audio", p)
		}
	}
}
