package logging

import (
	"time"
)

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Bow-tie specific helpers

func Component(name string) Field {
	return String("component", name)
}

func Bowtie(name string) Field {
	return String("bowtie", name)
}

func Node(name string) Field {
	return String("node", name)
}

func Role(role string) Field {
	return String("role", role)
}

func Chain(index int) Field {
	return Int("chain", index)
}

func Draws(n int) Field {
	return Int("draws", n)
}

func Seed(seed int64) Field {
	return Int64("seed", seed)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Format(format string) Field {
	return String("format", format)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
