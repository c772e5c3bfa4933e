package scheduler

import (
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/nexus-crm/nexus/internal/crm"
)

// replyTemplates is the fixed pool of simulated replies. Templates are
// Liquid source personalized with the contact's details at fire time.
var replyTemplates = []string{
	"Hi! Thanks for reaching out — happy to catch up. How does next week look? — {{ first_name }}",
	"Great to hear from you! Let's find some time soon. Best, {{ first_name }}",
	"Thanks for the note! Things have been busy over at {{ company }}, but I'd love to reconnect.",
	"Good to hear from you! I was actually just thinking we should catch up. — {{ first_name }}",
	"Appreciate you following up. Can we set something up for later this week?",
	"Hi there — thanks for thinking of me! A call sounds great. — {{ first_name }}",
	"Sorry for the slow replies lately. Yes, let's definitely talk soon!",
	"Thanks for checking in! Things are going well at {{ company }}. Would love to hear what you're working on.",
}

// ReplyPool renders the fixed reply templates with Liquid.
type ReplyPool struct {
	engine    *liquid.Engine
	templates []string

	mu     sync.Mutex
	parsed map[int]*liquid.Template
}

// NewReplyPool creates the default reply pool.
func NewReplyPool() *ReplyPool {
	return &ReplyPool{
		engine:    liquid.NewEngine(),
		templates: replyTemplates,
		parsed:    make(map[int]*liquid.Template),
	}
}

// Size returns the number of templates in the pool.
func (p *ReplyPool) Size() int { return len(p.templates) }

// Render renders template i against the contact. Render is lax: any parse
// or render failure falls back to the raw template text so a bad template
// never blocks the reply transition.
func (p *ReplyPool) Render(i int, contact *crm.Contact) string {
	if i < 0 || i >= len(p.templates) {
		i = 0
	}
	source := p.templates[i]

	p.mu.Lock()
	tpl, ok := p.parsed[i]
	if !ok {
		var err error
		tpl, err = p.engine.ParseString(source)
		if err != nil {
			p.mu.Unlock()
			return source
		}
		p.parsed[i] = tpl
	}
	p.mu.Unlock()

	bindings := map[string]interface{}{}
	if contact != nil {
		bindings["name"] = contact.Name
		bindings["first_name"] = firstName(contact.Name)
		bindings["company"] = contact.Company
	}

	out, err := tpl.RenderString(bindings)
	if err != nil {
		return source
	}
	return out
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
