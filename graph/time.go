package graph

import "time"

func msToDuration(ms uint32) time.Duration { return time.Duration(ms) * time.Millisecond }
