package checklist

import "lectio/internal/taxonomy"

// seedChecklists defines the built-in criteria: 11 checklists covering
// 3 stages, 5 contexts and 3 levels. YAML documents loaded with LoadDir
// replace entries wholesale, keyed by dimension/label.
var seedChecklists = []Checklist{
	// Stage (3)
	{
		Dimension: taxonomy.DimensionStage,
		Label:     "introduction",
		Items: []CheckItem{
			{
				ID:       "stage-intro-opening",
				Question: "Does the utterance open the lesson, greet the class, or settle students in before content begins?",
				PositiveExamples: []string{
					"Good morning, everyone. Let's get started.",
					"Take your seats, we have a lot to cover today.",
				},
				NegativeExamples: []string{
					"Now that you've solved the first one, try question five.",
				},
			},
			{
				ID:       "stage-intro-framing",
				Question: "Does the utterance state today's objective or connect it to the previous lesson?",
				PositiveExamples: []string{
					"Yesterday we learned about fractions; today we'll add them.",
					"By the end of class you'll be able to balance an equation.",
				},
				NegativeExamples: []string{
					"Let's summarize the three points we covered.",
				},
			},
		},
	},
	{
		Dimension: taxonomy.DimensionStage,
		Label:     "development",
		Items: []CheckItem{
			{
				ID:       "stage-dev-content",
				Question: "Does the utterance present, work through, or practice the main content of the lesson?",
				PositiveExamples: []string{
					"Look at the second step: we carry the one into the tens column.",
					"Try the next problem with your partner.",
				},
				NegativeExamples: []string{
					"Good morning, everyone.",
					"That's all for today.",
				},
			},
			{
				ID:       "stage-dev-progress",
				Question: "Does the utterance move the activity forward, deepen an idea, or respond to student work in the middle of the lesson?",
				PositiveExamples: []string{
					"Good, now what happens if the denominator is different?",
					"Let's look at the example on page twelve together.",
				},
				NegativeExamples: []string{
					"Remember to bring your worksheet tomorrow.",
				},
			},
		},
	},
	{
		Dimension: taxonomy.DimensionStage,
		Label:     "closing",
		Items: []CheckItem{
			{
				ID:       "stage-close-summary",
				Question: "Does the utterance summarize what was learned or review the lesson's key points?",
				PositiveExamples: []string{
					"So today we saw three ways to check your answer.",
					"Let's recap: what were the two main causes?",
				},
				NegativeExamples: []string{
					"Open your books to page ten.",
				},
			},
			{
				ID:       "stage-close-wrapup",
				Question: "Does the utterance end the lesson, assign homework, or preview the next session?",
				PositiveExamples: []string{
					"For homework, finish problems one through five.",
					"We'll continue with the experiment tomorrow. You may pack up.",
				},
				NegativeExamples: []string{
					"Who can tell me what a noun is?",
				},
			},
		},
	},

	// Context (5)
	{
		Dimension: taxonomy.DimensionContext,
		Label:     "explanation",
		Items: []CheckItem{
			{
				ID:       "ctx-explain-content",
				Question: "Does the utterance present facts, concepts, procedures, or worked examples to the class?",
				PositiveExamples: []string{
					"A noun is a word that names a person, place, or thing.",
					"First we multiply both sides by two, then we subtract three.",
				},
				NegativeExamples: []string{
					"Why do you think the ice melted faster?",
					"Quiet down, please.",
				},
			},
			{
				ID:       "ctx-explain-clarify",
				Question: "Does the utterance restate or elaborate an idea to make it clearer?",
				PositiveExamples: []string{
					"In other words, the denominator tells us how many equal parts there are.",
				},
				NegativeExamples: []string{
					"Nice work on that diagram.",
				},
			},
		},
	},
	{
		Dimension: taxonomy.DimensionContext,
		Label:     "question",
		Items: []CheckItem{
			{
				ID:       "ctx-question-solicit",
				Question: "Does the utterance ask students a question or otherwise solicit a response?",
				PositiveExamples: []string{
					"What do we call the top number of a fraction?",
					"Can anyone give me an example of a mammal?",
				},
				NegativeExamples: []string{
					"The top number is called the numerator.",
				},
			},
			{
				ID:       "ctx-question-check",
				Question: "Does the utterance check understanding or probe a student's reasoning?",
				PositiveExamples: []string{
					"How did you get seventeen, Mina?",
					"Does everyone see why step two works?",
				},
				NegativeExamples: []string{
					"Line up by the door.",
				},
			},
		},
	},
	{
		Dimension: taxonomy.DimensionContext,
		Label:     "feedback",
		Items: []CheckItem{
			{
				ID:       "ctx-feedback-evaluate",
				Question: "Does the utterance evaluate, praise, or correct a student's answer or work?",
				PositiveExamples: []string{
					"Exactly right, the answer is twelve.",
					"Not quite. Check the sign in your second step.",
				},
				NegativeExamples: []string{
					"Who wants to try the next one?",
				},
			},
			{
				ID:       "ctx-feedback-respond",
				Question: "Does the utterance respond to a specific student contribution with judgment or guidance?",
				PositiveExamples: []string{
					"Good thinking, but remember we need the same denominator first.",
				},
				NegativeExamples: []string{
					"A verb is an action word.",
				},
			},
		},
	},
	{
		Dimension: taxonomy.DimensionContext,
		Label:     "facilitation",
		Items: []CheckItem{
			{
				ID:       "ctx-facilitate-scaffold",
				Question: "Does the utterance guide, hint, or scaffold students toward finding an answer themselves?",
				PositiveExamples: []string{
					"Think about what we did with the last problem. What was our first move?",
					"You're close. What happens if you draw it out?",
				},
				NegativeExamples: []string{
					"The answer is twelve.",
				},
			},
			{
				ID:       "ctx-facilitate-participation",
				Question: "Does the utterance organize group work, invite participation, or keep a discussion moving?",
				PositiveExamples: []string{
					"Turn to your partner and compare your answers.",
					"Let's hear from someone who hasn't spoken yet.",
				},
				NegativeExamples: []string{
					"Stop talking and face the front.",
				},
			},
		},
	},
	{
		Dimension: taxonomy.DimensionContext,
		Label:     "management",
		Items: []CheckItem{
			{
				ID:       "ctx-manage-behavior",
				Question: "Does the utterance direct behavior, attention, or discipline rather than content?",
				PositiveExamples: []string{
					"Eyes up front, please.",
					"Jun, put the phone away.",
				},
				NegativeExamples: []string{
					"What's the square root of sixteen?",
				},
			},
			{
				ID:       "ctx-manage-logistics",
				Question: "Does the utterance handle materials, timing, seating, or other classroom procedures?",
				PositiveExamples: []string{
					"Pass your worksheets to the front.",
					"You have five minutes left.",
				},
				NegativeExamples: []string{
					"Great answer, that's exactly the idea.",
				},
			},
		},
	},

	// Level (3)
	{
		Dimension: taxonomy.DimensionLevel,
		Label:     "L1",
		Items: []CheckItem{
			{
				ID:       "level-l1-recall",
				Question: "Does the utterance ask for or state a fact, definition, or procedure to be remembered or understood as-is?",
				PositiveExamples: []string{
					"What is seven times eight?",
					"A triangle has three sides.",
				},
				NegativeExamples: []string{
					"Design your own experiment to test the hypothesis.",
				},
			},
			{
				ID:       "level-l1-identify",
				Question: "Does the utterance involve naming, listing, or recognizing something already taught?",
				PositiveExamples: []string{
					"Point to the adjective in this sentence.",
					"Which of these shapes is a hexagon?",
				},
				NegativeExamples: []string{
					"Why do you think the author chose this ending?",
				},
			},
		},
	},
	{
		Dimension: taxonomy.DimensionLevel,
		Label:     "L2",
		Items: []CheckItem{
			{
				ID:       "level-l2-apply",
				Question: "Does the utterance require applying a learned rule or procedure to a new case?",
				PositiveExamples: []string{
					"Use the area formula to find the area of this garden.",
					"Now solve the same kind of problem with these numbers.",
				},
				NegativeExamples: []string{
					"What is the formula for area?",
				},
			},
			{
				ID:       "level-l2-analyze",
				Question: "Does the utterance ask students to compare, classify, or break a problem into parts?",
				PositiveExamples: []string{
					"How are these two word problems different?",
					"Which step in his solution went wrong, and why?",
				},
				NegativeExamples: []string{
					"Repeat after me: photosynthesis.",
				},
			},
		},
	},
	{
		Dimension: taxonomy.DimensionLevel,
		Label:     "L3",
		Items: []CheckItem{
			{
				ID:       "level-l3-create",
				Question: "Does the utterance ask students to design, construct, or synthesize something new from what they know?",
				PositiveExamples: []string{
					"Write your own word problem that needs two steps to solve.",
					"Combine what we know about heat and light to explain the seasons.",
				},
				NegativeExamples: []string{
					"Copy the definition into your notebook.",
				},
			},
			{
				ID:       "level-l3-evaluate",
				Question: "Does the utterance ask students to judge, justify, or defend a position with criteria?",
				PositiveExamples: []string{
					"Which solution is better, and how would you convince us?",
					"Do you agree with her conclusion? Defend your answer.",
				},
				NegativeExamples: []string{
					"What year did the war end?",
				},
			},
		},
	},
}
