package detector

// DefaultCorpus returns the built-in gold-standard posts, used by
// orchestrators when no curated corpus has been loaded yet.
func DefaultCorpus() []ReferenceItem {
	return []ReferenceItem{
		{
			Text: "Here's the thing nobody tells you about raising Series A: The deck is just 10% of the battle. " +
				"The other 90%? It's your ability to tell a story that makes investors lean forward in their seats. " +
				"I remember our first pitch. Perfect slides. Terrible storytelling. We got nos across the board. " +
				"Round two? Same data, different narrative. We raised $12M. The difference? We stopped talking about " +
				"features and started talking about the future we were building. What story is your startup telling? " +
				"#startups #fundraising #storytelling",
			Tags: []string{"fundraising", "storytelling"},
		},
		{
			Text: "Unpopular opinion: Your first 10 employees matter more than your first 10 customers. Here's why: " +
				"Customers can be replaced. Great people? They're irreplaceable. They become the DNA of everything you " +
				"build after. When we were 8 people at Explo, I spent 60% of my time on hiring. Sounds crazy? Maybe. " +
				"But those early hires became our leadership team. They shaped our culture, our product, our entire " +
				"trajectory. Your first employees don't just work for your company - they ARE your company. Hire like " +
				"your future depends on it. Because it does. #hiring #startups #culture",
			Tags: []string{"hiring", "culture"},
		},
		{
			Text: "3 years ago, we almost shut down Explo. Today, we're powering analytics for 500+ companies. " +
				"What changed? We stopped building what we thought users wanted and started building what they " +
				"actually needed. The pivot wasn't glamorous. We threw away 18 months of work. Cut our team in half. " +
				"Started over. But sometimes the best path forward is admitting you're on the wrong path. If your " +
				"startup feels stuck, ask yourself: Are you solving a real problem or just building cool technology? " +
				"The answer might surprise you. #pivoting #startups #product",
			Tags: []string{"pivoting", "product"},
		},
		{
			Text: "The best advice I ever got came from a customer who hated our product. 'Gary, this isn't solving " +
				"my problem. It's creating new ones.' Ouch. But he was right. Instead of defending our work, we " +
				"listened. Really listened. That conversation led to our biggest feature overhaul and eventually our " +
				"product-market fit. Your harshest critics often become your biggest advocates. But only if you're " +
				"brave enough to hear them out. When was the last time you asked a customer what you're doing wrong? " +
				"#feedback #productmarket #customers",
			Tags: []string{"feedback", "customers"},
		},
	}
}
