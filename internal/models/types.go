package models

// ScheduleKind selects how a playout is generated
type ScheduleKind string

// Schedule kinds
const (
	ScheduleKindClassic  ScheduleKind = "classic"
	ScheduleKindTemplate ScheduleKind = "template"
)

// PlayoutMode is the "how long to play" policy of a schedule item
type PlayoutMode string

// Playout modes
const (
	PlayoutModeOne      PlayoutMode = "one"
	PlayoutModeMultiple PlayoutMode = "multiple"
	PlayoutModeDuration PlayoutMode = "duration"
	PlayoutModeFlood    PlayoutMode = "flood"
)

// StartType controls whether a schedule item starts at a fixed time of day
type StartType string

// Start types
const (
	StartTypeDynamic StartType = "dynamic"
	StartTypeFixed   StartType = "fixed"
)

// TailMode controls what happens after a duration item stops short of its target
type TailMode string

// Tail modes
const (
	TailModeNone    TailMode = "none"
	TailModeOffline TailMode = "offline"
	TailModeFiller  TailMode = "filler"
)

// PlaybackOrder controls how content is enumerated
type PlaybackOrder string

// Playback orders
const (
	PlaybackOrderChronological PlaybackOrder = "chronological"
	PlaybackOrderSeasonEpisode PlaybackOrder = "season_episode"
	PlaybackOrderShuffle       PlaybackOrder = "shuffle"
	PlaybackOrderRandom        PlaybackOrder = "random"
	PlaybackOrderMarathon      PlaybackOrder = "marathon"
)

// MarathonGroupBy is the grouping attribute for marathon batches
type MarathonGroupBy string

// Marathon grouping attributes
const (
	MarathonGroupByNone       MarathonGroupBy = "none"
	MarathonGroupByShow       MarathonGroupBy = "show"
	MarathonGroupBySeason     MarathonGroupBy = "season"
	MarathonGroupByCollection MarathonGroupBy = "collection"
)

// FillerKind marks why an item was placed on the timeline
type FillerKind string

// Filler kinds
const (
	FillerKindNone        FillerKind = "none"
	FillerKindPreRoll     FillerKind = "pre_roll"
	FillerKindPostRoll    FillerKind = "post_roll"
	FillerKindTail        FillerKind = "tail"
	FillerKindFallback    FillerKind = "fallback"
	FillerKindDecoDefault FillerKind = "deco_default"
	FillerKindBreak       FillerKind = "break"
	// FillerKindGuide marks main content hidden from the program guide
	FillerKindGuide FillerKind = "guide"
)

// FillerMode controls how much filler a preset contributes
type FillerMode string

// Filler modes
const (
	FillerModeDuration FillerMode = "duration"
	FillerModeCount    FillerMode = "count"
	FillerModePad      FillerMode = "pad"
)

// StopScheduling controls whether block content may overshoot the block
type StopScheduling string

// Stop scheduling modes
const (
	StopBeforeDurationEnd StopScheduling = "before_duration_end"
	StopAfterDurationEnd  StopScheduling = "after_duration_end"
)

// DecoMode is the inherit/disable/override switch used by every deco facet
type DecoMode string

// Deco modes
const (
	DecoModeInherit  DecoMode = "inherit"
	DecoModeDisable  DecoMode = "disable"
	DecoModeOverride DecoMode = "override"
)

// BreakPlacement positions break content relative to a block
type BreakPlacement string

// Break placements
const (
	BreakPlacementBlockStart  BreakPlacement = "block_start"
	BreakPlacementBlockFinish BreakPlacement = "block_finish"
)

// MediaKind classifies library items
type MediaKind string

// Media kinds
const (
	MediaKindMovie      MediaKind = "movie"
	MediaKindEpisode    MediaKind = "episode"
	MediaKindMusicVideo MediaKind = "music_video"
	MediaKindOtherVideo MediaKind = "other_video"
	MediaKindSong       MediaKind = "song"
)

// GuideMode controls whether items appear in the program guide
type GuideMode string

// Guide modes
const (
	GuideModeNormal GuideMode = "normal"
	GuideModeFiller GuideMode = "filler"
)
