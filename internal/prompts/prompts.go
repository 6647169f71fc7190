// Package prompts holds the fixed catalogue of UI design prompts and the
// uniform draw over it.
package prompts

import "math/rand/v2"

// all is the catalogue in display order. Entries are shown exactly as
// written, including the trailing comma in "...interactive elements,".
var all = [...]string{
	"Try increasing the contrast for better readability.",
	"Consider using a grid system for better alignment.",
	"Add more whitespace to make it less cluttered.",
	"Experiment with a different color palette for better mood setting.",
	"Simplify your navigation to improve user flow.",
	"Use consistent spacing between elements.",
	"Consider adding subtle animations for better user engagement.",
	"Ensure text is legible on all background colors.",
	"Check your design for accessibility compliance.",
	"Try a different font pairing for better hierarchy.",
	"Reduce the number of competing visual elements.",
	"Ensure your call-to-action buttons stand out.",
	"Consider using icons to enhance visual communication.",
	"Test your UI with different screen sizes for responsiveness.",
	"Add subtle shadows to create depth in your interface.",
	"Ensure your color choices convey the right emotion for your brand.",
	"Consider using fewer fonts for a more cohesive look.",
	"Check if your UI maintains visual hierarchy effectively.",
	"Try using the 60-30-10 color rule for better balance.",
	"Ensure there's enough padding inside interactive elements,",
	"Use consistent iconography for a cohesive design.",
	"Ensure clickable elements are easily tappable on mobile.",
	"Test color contrast for accessibility compliance.",
	"Align text and images for better visual harmony.",
	"Use a consistent grid system throughout your design.",
	"Consider using micro-interactions to delight users.",
	"Avoid using too many bright colors; they can overwhelm users.",
	"Use whitespace strategically to guide user focus.",
	"Ensure all images are optimized for faster loading.",
	"Check for consistent alignment across all sections.",
	"Use hover states to indicate interactivity.",
	"Maintain consistent padding and margin for a balanced layout.",
	"Consider breaking long paragraphs into smaller chunks.",
	"Use a consistent button style for better usability.",
	"Test font sizes on different devices for readability.",
	"Ensure your primary action is the most visually prominent.",
	"Use breadcrumbs for easier navigation in deep hierarchies.",
	"Check if the UI follows the principle of least surprise.",
	"Experiment with different layouts for better engagement.",
	"Make sure your loading animations are not too distracting.",
	"Ensure all links are easily distinguishable from text.",
	"Keep forms short and easy to complete.",
	"Use contrasting colors for error and success messages.",
	"Add a progress bar for multi-step processes.",
	"Ensure consistent border-radius for rounded elements.",
	"Test your design with real content for better context.",
	"Use placeholder text that guides users effectively.",
	"Ensure there's a clear visual hierarchy on every screen.",
	"Make sure all interactive elements are accessible by keyboard.",
	"Consider using illustrations to add personality.",
	"Ensure consistent use of drop shadows for depth.",
	"Use color psychology to influence user behavior.",
	"Check that all text is legible against background images.",
	"Keep navigation options minimal for better focus.",
	"Ensure that animations enhance, not distract from UX.",
	"Use cards to organize related content cleanly.",
	"Try using a sticky header for better navigation.",
	"Ensure all icons are labeled for accessibility.",
	"Test your design's usability with real users.",
	"Ensure consistent hover and active states for buttons.",
	"Add a search bar for content-heavy interfaces.",
	"Use contrasting colors for better call-to-action visibility.",
	"Check that input fields are clearly distinguishable.",
	"Ensure form validation messages are clear and helpful.",
	"Optimize for touch gestures on mobile devices.",
	"Use visual anchors to guide the user's eye movement.",
	"Add animations to create a sense of continuity.",
	"Ensure there's a logical flow between interactive steps.",
	"Make sure modal windows are easily dismissible.",
	"Test your UI in both light and dark modes.",
	"Ensure icons are intuitive and universally understood.",
	"Use storytelling elements to engage users emotionally.",
	"Add subtle loading indicators for asynchronous actions.",
	"Use real-world metaphors to make UI intuitive.",
	"Ensure consistent use of typography scales.",
	"Check if your UI communicates brand identity clearly.",
	"Use tooltips to provide additional context without clutter.",
	"Ensure focus states are clear for accessibility users.",
	"Add error prevention measures to minimize user mistakes.",
	"Make sure feedback is provided for every action.",
	"Consider using collapsible sections to save space.",
	"Ensure consistent use of visual metaphors.",
}

// Len is the size of the catalogue.
func Len() int { return len(all) }

// At returns the prompt at index i. It panics if i is out of range.
func At(i int) string { return all[i] }

// Picker draws one prompt uniformly. intn must return a value in [0, n).
type Picker struct {
	intn func(n int) int
}

// NewPicker uses intn as the random source; nil means math/rand/v2.
func NewPicker(intn func(n int) int) *Picker {
	if intn == nil {
		intn = rand.IntN
	}
	return &Picker{intn: intn}
}

// Pick returns a uniformly chosen prompt.
func (p *Picker) Pick() string {
	return all[p.intn(len(all))]
}
