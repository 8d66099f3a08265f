package services

import "onboarding-assistant/models"

// OnboardingDocuments is the fixed corpus: one document per wizard section
// plus a general FAQ. The set is compiled in; there is no ingestion surface.
func OnboardingDocuments() []models.Document {
	return []models.Document{
		{
			ID:      "profile-setup",
			Title:   "Setting Up Your Guide Profile",
			Section: models.SectionProfile,
			Content: `Your guide profile is the first thing travelers see, so it is worth taking time to get it right.

Profile photo. Upload a clear, recent photo of your face. Photos must be at least 400x400 pixels, in JPEG or PNG format, and under 5 MB. Avoid sunglasses, heavy filters, group shots and logos. Profiles with a real face photo receive significantly more booking requests. To change your photo later, open the profile section and select the current photo.

Display name. Use the name travelers should call you. It does not have to match your legal name, but it must not contain contact details, links or offensive language.

Bio. Write between 50 and 500 characters about who you are, what you love about your city and what makes your tours special. Write in the first person. Mention the languages you speak fluently; travelers filter guides by language.

Your profile is reviewed within 24 hours of submission. You can continue with the next onboarding steps while the review is pending.`,
			Metadata: map[string]string{"category": "onboarding"},
		},
		{
			ID:      "personal-info",
			Title:   "Personal Information and Identity Verification",
			Section: models.SectionPersonalInfo,
			Content: `Before you can accept bookings we must verify who you are. This information is never shown to travelers.

Legal name and date of birth. Enter your name exactly as it appears on your government-issued ID. You must be at least 18 years old to work as a guide.

Contact details. Provide a phone number that can receive SMS; we use it for booking notifications and account recovery. A verification code is sent when you save the number.

Identity document. Upload a passport, national ID card or driver's license. The photo must show the full document with all four corners visible and no glare. Verification normally completes within a few minutes but can take up to 24 hours during busy periods.

If verification fails, you will receive an email explaining the reason. The most common causes are blurry photos and mismatched names. You can retry verification up to 5 times before contacting support.`,
			Metadata: map[string]string{"category": "onboarding"},
		},
		{
			ID:      "payment-setup",
			Title:   "Payment and Payout Setup",
			Section: models.SectionPayment,
			Content: `You are paid for completed tours through the payout method configured in this step.

Supported payout methods. Bank transfer (SEPA or SWIFT depending on your country), and in selected countries PayPal and Wise. Enter your IBAN or account number exactly as issued by your bank; a mismatch between the account holder name and your verified legal name will block payouts.

Payout schedule. Earnings are released 24 hours after a tour is completed and paid out weekly, every Tuesday. The minimum payout amount is 25 EUR or equivalent; smaller balances roll over to the next week.

Tax details. Provide your tax residency country and, where applicable, your VAT or tax identification number. We issue a yearly earnings summary you can use for your tax filing. We do not withhold taxes on your behalf; declaring income is your responsibility.

Currency. Payouts are made in the currency of your bank account where supported. Conversion uses the mid-market rate on the payout date.`,
			Metadata: map[string]string{"category": "onboarding"},
		},
		{
			ID:      "tour-listings",
			Title:   "Creating Your Tour Listings",
			Section: models.SectionTours,
			Content: `You need at least one published tour listing to complete onboarding.

Title and description. Choose a specific, descriptive title; "Hidden Courtyards of the Old Town" outperforms "City Tour". The description should cover what travelers will see, what is included, the meeting point and any physical requirements. Descriptions must be between 200 and 3000 characters.

Itinerary. List the stops in order with an approximate duration for each. Tours can last between 1 and 8 hours. If your tour includes tickets or food, state clearly whether the cost is included in the price.

Pricing. Set a price per person and an optional private group price. The platform fee of 15 percent is deducted from the listed price. You can offer a discount for children or for groups of 6 or more.

Photos. Upload at least 3 photos per tour, in landscape orientation and at least 1280x720 pixels. Use your own photos; stock images are rejected during review and repeated use can suspend your listing privileges.

Every new listing goes through content review, normally within 48 hours.`,
			Metadata: map[string]string{"category": "onboarding"},
		},
		{
			ID:      "calendar-availability",
			Title:   "Managing Your Availability Calendar",
			Section: models.SectionCalendar,
			Content: `Your calendar controls when travelers can book you. Bookings are only offered for the slots you mark as available.

Weekly schedule. Define a recurring weekly pattern of available time slots per tour. Slots must be at least as long as the tour duration plus your travel buffer.

Blocked dates. Block individual dates for holidays or personal time. Blocking a date with an existing confirmed booking does not cancel it; you must cancel the booking separately, which affects your reliability score.

Lead time and horizon. Set a minimum booking lead time between 2 and 72 hours so last-minute bookings do not catch you unprepared, and a booking horizon of up to 12 months.

Instant booking. With instant booking enabled, travelers can confirm an available slot without waiting for your approval. With it disabled, you have 24 hours to accept or decline each request; requests not answered in time expire and hurt your response rate.

Synchronization. You can subscribe to your platform calendar from any iCal-compatible app to see bookings next to your personal events.`,
			Metadata: map[string]string{"category": "onboarding"},
		},
		{
			ID:      "onboarding-quiz",
			Title:   "The Onboarding Quiz",
			Section: models.SectionQuiz,
			Content: `The final onboarding step is a short quiz confirming you know the policies that matter on tour.

Format. 15 multiple-choice questions covering cancellation policy, safety requirements, guest communication rules and payout basics. There is no time limit.

Passing score. You need 80 percent (12 of 15 correct) to pass. If you fail, you can retake the quiz after reviewing the highlighted topics; there is no limit on attempts, but a 1 hour cooldown applies between attempts.

Topics to review. The quiz draws on the guide handbook sections about cancellations (travelers can cancel free of charge up to 24 hours before the tour), safety (you must carry a charged phone and follow local group-size regulations) and communication (keep all booking communication on the platform until the tour is confirmed).

After passing, your account is activated and your published tours become bookable immediately. You can view your quiz results and the handbook at any time from your dashboard.`,
			Metadata: map[string]string{"category": "onboarding"},
		},
		{
			ID:      "onboarding-faq",
			Title:   "Onboarding Frequently Asked Questions",
			Section: models.SectionProfile,
			Content: `How long does onboarding take? Most guides finish in about 90 minutes spread over the six steps. Identity verification and listing review run in the background, so you rarely wait on them.

Can I complete the steps in any order? The wizard presents the steps in a fixed order, but you can go back and edit any completed step before finishing the quiz.

Do I need to finish everything in one sitting? No. Progress is saved after every step and you can resume where you left off.

What if I get stuck? Every step has a help panel where you can ask questions about the onboarding documentation. For account-specific problems, such as a rejected ID document you believe is valid, contact support from the link at the bottom of each page.

When can I start earning? As soon as the quiz is passed, your profile is approved and at least one tour listing is published, travelers can book you. Your first payout follows the regular weekly schedule.`,
			Metadata: map[string]string{"category": "faq"},
		},
	}
}
