package generate

import (
	"encoding/json"

	"github.com/abhisek/opicdrill/internal/llm"
)

// DemoProvider answers every generation purpose with fixed content so the
// app can be explored without an API key. Batches repeat, so a refill only
// adds items the first time.
func DemoProvider() *llm.MockProvider {
	m := llm.NewMockProvider()
	for purpose, body := range demoAnswers {
		m.Always(purpose, llm.MockResponse{Content: json.RawMessage(body)})
	}
	return m
}

var demoAnswers = map[string]string{
	PurposeQuestion: `{"question":"You indicated that you like going to parks. Describe the park you visit most often. What does it look like and what do people do there?"}`,

	PurposeVocab: `{"vocabs":[
		{"word":"a stone's throw away","meaning":"엎어지면 코 닿을 거리"},
		{"word":"hit the gym","meaning":"운동하러 가다"},
		{"word":"laid-back","meaning":"느긋한, 여유로운"},
		{"word":"run errands","meaning":"볼일을 보다"},
		{"word":"breathtaking","meaning":"숨이 멎을 듯한"},
		{"word":"get some fresh air","meaning":"바람을 쐬다"},
		{"word":"commute","meaning":"통근하다"},
		{"word":"on a whim","meaning":"충동적으로"},
		{"word":"grab a bite","meaning":"간단히 먹다"},
		{"word":"crowded","meaning":"붐비는"},
		{"word":"unwind","meaning":"긴장을 풀다"},
		{"word":"be into something","meaning":"~에 빠져 있다"}
	]}`,

	PurposeStructures: `{"structures":[
		{"korean":"제가 가장 좋아하는 ~은 ...예요","english":"My favorite ~ has to be ...","examples":[
			{"korean":"제가 가장 좋아하는 공원은 한강 공원이에요.","english":"My favorite park has to be Hangang Park."}]},
		{"korean":"~할 때마다 ...해요","english":"Whenever I ~, I ...","examples":[
			{"korean":"시간이 날 때마다 산책을 해요.","english":"Whenever I have free time, I go for a walk."}]},
		{"korean":"예전에는 ~했지만 요즘은 ...해요","english":"I used to ~, but these days I ...","examples":[
			{"korean":"예전에는 버스를 탔지만 요즘은 자전거를 타요.","english":"I used to take the bus, but these days I ride my bike."}]},
		{"korean":"~하는 게 제일 기억에 남아요","english":"What I remember most is ~","examples":[
			{"korean":"친구들과 캠핑한 게 제일 기억에 남아요.","english":"What I remember most is camping with my friends."}]},
		{"korean":"솔직히 말하면 ~","english":"To be honest, ~","examples":[
			{"korean":"솔직히 말하면 요리를 잘 못해요.","english":"To be honest, I'm not a great cook."}]}
	]}`,

	PurposeSamples: `{"samples":[
		"저는 집 근처에 있는 작은 공원에 자주 가요. 나무가 많고 조용해서 산책하기 좋아요. 주말에는 가족들이 피크닉을 하러 많이 와요.",
		"제가 가장 자주 가는 공원은 한강 공원이에요. 강을 따라 자전거 도로가 있어서 저녁마다 자전거를 타요.",
		"회사 근처에 공원이 있어서 점심시간에 가끔 가요. 벤치에 앉아서 커피를 마시면서 쉬어요."
	]}`,

	PurposeScripts: `{"scripts":[
		{"label":"Simple","text":"I often go to a small park near my house. It has a lot of trees and it is quiet, so it is good for walking. On weekends, many families go there for picnics.","logicFlow":["which park","what it looks like","what people do"]},
		{"label":"Natural","text":"There's a small park just a stone's throw away from my place, and I go there pretty often. It's full of trees and really quiet, so it's perfect for a walk. On weekends you'll see lots of families having picnics.","logicFlow":["which park","what it looks like","what people do"]},
		{"label":"Detailed","text":"The park I go to most is a small neighborhood park a stone's throw away from my apartment. What I love about it is how green and peaceful it is, even though it's right in the middle of the city. I usually take a walk there after work to unwind. On weekends it gets a bit crowded, because lots of families come out to have picnics on the grass.","logicFlow":["which park","why I like it","when I go","weekend scene"]}
	]}`,

	PurposeCommonPatterns: `{"patterns":[
		{"pattern":"What I love about ~ is ...","explanation":"Opens the reason you like something and buys time to think.","example":"What I love about my neighborhood is how quiet it is."},
		{"pattern":"I usually ~ after work to unwind.","explanation":"A ready-made routine sentence for habit questions.","example":"I usually go for a run after work to unwind."},
		{"pattern":"It's a stone's throw away from ~","explanation":"Natural way to say a place is very close.","example":"The gym is a stone's throw away from my office."}
	]}`,
}
