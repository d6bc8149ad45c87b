// Package qrstyle renders the styled QR symbols printed on stickers.
//
// A Compositor is built once from an immutable Style and renders each
// identifier independently: encode the payload URL, scale it with hard
// module edges, round the corners, optionally punch a framed cutout for an
// icon, and optionally pad the result with a solid border. Rendering shares
// no mutable state between calls, so one Compositor can serve every worker in
// a batch.
//
// Style values come from a shallow merge of caller overrides over Defaults.
// The merge happens in NewStyle; the compositor never consults the override
// map again.
package qrstyle
