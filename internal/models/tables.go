package models

// Every model is pinned to its table in the embedded schema.

func (Channel) TableName() string                     { return "channels" }
func (Watermark) TableName() string                   { return "watermarks" }
func (MediaItem) TableName() string                   { return "media_items" }
func (Collection) TableName() string                  { return "collections" }
func (CollectionItem) TableName() string              { return "collection_items" }
func (MultiCollection) TableName() string             { return "multi_collections" }
func (MultiCollectionItem) TableName() string         { return "multi_collection_items" }
func (SmartCollection) TableName() string             { return "smart_collections" }
func (Playlist) TableName() string                    { return "playlists" }
func (PlaylistItem) TableName() string                { return "playlist_items" }
func (RerunCollection) TableName() string             { return "rerun_collections" }
func (RerunHistory) TableName() string                { return "rerun_history" }
func (ProgramSchedule) TableName() string             { return "program_schedules" }
func (ProgramScheduleItem) TableName() string         { return "program_schedule_items" }
func (Playout) TableName() string                     { return "playouts" }
func (PlayoutAnchor) TableName() string               { return "playout_anchors" }
func (ScheduleItemEnumeratorState) TableName() string { return "schedule_item_enumerator_states" }
func (CollectionEnumeratorState) TableName() string   { return "collection_enumerator_states" }
func (FillGroupEnumeratorState) TableName() string    { return "fill_group_enumerator_states" }
func (PlayoutItem) TableName() string                 { return "playout_items" }
func (PlayoutGap) TableName() string                  { return "playout_gaps" }
func (PlayoutHistory) TableName() string              { return "playout_history" }
func (PlayoutBuildStatus) TableName() string          { return "playout_build_status" }
func (BlockGroup) TableName() string                  { return "block_groups" }
func (Block) TableName() string                       { return "blocks" }
func (BlockItem) TableName() string                   { return "block_items" }
func (TemplateGroup) TableName() string               { return "template_groups" }
func (Template) TableName() string                    { return "templates" }
func (TemplateItem) TableName() string                { return "template_items" }
func (PlayoutTemplate) TableName() string             { return "playout_templates" }
func (DecoGroup) TableName() string                   { return "deco_groups" }
func (Deco) TableName() string                        { return "decos" }
func (DecoBreakContent) TableName() string            { return "deco_break_content" }
func (DecoTemplateGroup) TableName() string           { return "deco_template_groups" }
func (DecoTemplate) TableName() string                { return "deco_templates" }
func (DecoTemplateItem) TableName() string            { return "deco_template_items" }
func (FillerPreset) TableName() string                { return "filler_presets" }
