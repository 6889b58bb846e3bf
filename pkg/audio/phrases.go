package audio

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/teslashibe/go-kiosk/pkg/tts"
)

// Phrases is the canned speech the kiosk uses around agent replies.
type Phrases struct {
	// Fillers mask completion latency and are played round-robin.
	Fillers []string `yaml:"fillers"`

	// Greetings open a session; one is picked at random.
	Greetings []string `yaml:"greetings"`

	// Intermediate phrases are keyed by tool category and picked at random.
	Intermediate map[string][]string `yaml:"intermediate"`
}

// DefaultPhrases returns the stock kiosk phrases.
func DefaultPhrases() Phrases {
	return Phrases{
		Fillers: []string{
			"uh-huh...",
			"umm okay...",
			"uh ha um",
			"sure um...",
			"... uh huh hm...",
		},
		Greetings: []string{
			"Uh... Welcome to KFC and what can I get for you today?",
			"Hey there... um, welcome to KFC and how can I help you?",
			"Good day, welcome to KFC and what would you like to order?",
			"Hi... You've reached KFC, ready to place your order?",
			"Hello there! you have arrived at KFC, what are you craving?",
			"Uhm.. Hi... welcome to Kentucky Fried Chicken and are you ready to order something, or anything you prefer to have?",
		},
		Intermediate: map[string][]string{
			"get_main_dishes": {
				"Let me pull up our main dishes for you.",
				"Sure, Let's see our mains...",
				"Just a second...",
				"Alright, Let me check it out for you...",
			},
			"get_sides": {
				"Let me grab our sides menu for you.",
				"Sure thing, I'll check what sides we've got.",
				"Okay, Let me see what sides we're offering today.",
				"Let's see our side dishes...",
			},
			"get_beverages": {
				"Let's see our beverages options...",
				"Sure, I'll check what beverages we have available.",
				"Drink options coming right up...",
				"uh.. Alright...",
			},
			"add_item": {
				"Got it, I'm adding it to your order now.",
				"Okay, Am adding it to the cart right away.",
				"Alright, I'm including that in...",
				"Sure thing, I'm adding it to the order.",
			},
			"remove_item": {
				"Got it..., Removing it...",
				"No problem...",
				"Okay, Taking the item off the order...",
				"Sure thing...",
			},
			"modify_quantity": {
				"Certainly..., I'll update that for you...",
				"No problem, I'm changing it...",
				"Okay, I'm, adjusting the quantity...",
				"Got it...",
			},
			"confirm_order": {
				"Yeah, Got it...",
				"Alright then...",
				"Okay sure...",
			},
		},
	}
}

// All returns every phrase text once.
func (p Phrases) All() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(list []string) {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	add(p.Fillers)
	add(p.Greetings)
	for _, list := range p.Intermediate {
		add(list)
	}
	return out
}

// Slug returns the file stem used to store the clip for text.
func Slug(text string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= 60 {
			break
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "phrase"
	}
	return s
}

// Library resolves phrase text to clips. Clips are read from Dir as
// <slug>.opus or <slug>.pcm; missing ones are synthesized once and
// cached as .pcm.
type Library struct {
	phrases Phrases
	dir     string
	synth   tts.Provider
	logger  *slog.Logger

	mu     sync.Mutex
	clips  map[string]Clip
	filler int
}

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// WithPhraseDir sets the clip directory. An empty dir disables the disk cache.
func WithPhraseDir(dir string) LibraryOption {
	return func(l *Library) { l.dir = dir }
}

// WithSynthesizer sets the TTS provider used for missing clips.
func WithSynthesizer(p tts.Provider) LibraryOption {
	return func(l *Library) { l.synth = p }
}

// WithLibraryLogger sets the logger.
func WithLibraryLogger(logger *slog.Logger) LibraryOption {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLibrary creates a phrase library.
func NewLibrary(phrases Phrases, opts ...LibraryOption) *Library {
	l := &Library{
		phrases: phrases,
		logger:  slog.Default(),
		clips:   make(map[string]Clip),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "audio.phrases")
	return l
}

// Phrases returns the library's phrase set.
func (l *Library) Phrases() Phrases { return l.phrases }

// Preload resolves every phrase so later lookups never hit the network.
// It stops at the first failure.
func (l *Library) Preload(ctx context.Context) error {
	for _, text := range l.phrases.All() {
		if _, err := l.Clip(ctx, text); err != nil {
			return err
		}
	}
	l.logger.Info("phrases loaded", "count", len(l.phrases.All()), "dir", l.dir)
	return nil
}

// Clip returns the clip for text, loading or synthesizing it on first use.
func (l *Library) Clip(ctx context.Context, text string) (Clip, error) {
	l.mu.Lock()
	clip, ok := l.clips[text]
	l.mu.Unlock()
	if ok {
		return clip, nil
	}

	clip, err := l.resolve(ctx, text)
	if err != nil {
		return Clip{}, err
	}

	l.mu.Lock()
	l.clips[text] = clip
	l.mu.Unlock()
	return clip, nil
}

func (l *Library) resolve(ctx context.Context, text string) (Clip, error) {
	slug := Slug(text)

	if l.dir != "" {
		for _, ext := range []string{".opus", ".pcm"} {
			path := filepath.Join(l.dir, slug+ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			clip, err := LoadClip(path)
			if err != nil {
				return Clip{}, err
			}
			clip.Name = slug
			return clip, nil
		}
	}

	if l.synth == nil {
		return Clip{}, fmt.Errorf("audio: no clip for %q and no synthesizer", text)
	}

	result, err := l.synth.Synthesize(ctx, text)
	if err != nil {
		return Clip{}, fmt.Errorf("audio: synthesize %q: %w", slug, err)
	}
	clip := Normalize(Clip{Name: slug, PCM: result.Audio, SampleRate: result.Format.SampleRate})

	if l.dir != "" {
		if err := SavePCM(filepath.Join(l.dir, slug+".pcm"), clip); err != nil {
			l.logger.Warn("failed to cache phrase", "slug", slug, "error", err)
		}
	}
	return clip, nil
}

// NextFiller returns the next filler in round-robin order.
func (l *Library) NextFiller(ctx context.Context) (Clip, error) {
	if len(l.phrases.Fillers) == 0 {
		return Clip{}, ErrEmptyClip
	}
	l.mu.Lock()
	text := l.phrases.Fillers[l.filler%len(l.phrases.Fillers)]
	l.filler++
	l.mu.Unlock()
	return l.Clip(ctx, text)
}

// Greeting returns a random greeting.
func (l *Library) Greeting(ctx context.Context) (Clip, error) {
	return l.pick(ctx, l.phrases.Greetings)
}

// Intermediate returns a random phrase for category. ok is false when the
// category has no phrases.
func (l *Library) Intermediate(ctx context.Context, category string) (clip Clip, ok bool, err error) {
	list := l.phrases.Intermediate[category]
	if len(list) == 0 {
		return Clip{}, false, nil
	}
	clip, err = l.pick(ctx, list)
	return clip, err == nil, err
}

func (l *Library) pick(ctx context.Context, list []string) (Clip, error) {
	if len(list) == 0 {
		return Clip{}, ErrEmptyClip
	}
	return l.Clip(ctx, list[rand.Intn(len(list))])
}
