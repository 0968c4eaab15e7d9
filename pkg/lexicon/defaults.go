package lexicon

// Relationship categories produced by the relation signals.
const (
	RelationAcquainted = "acquainted"
	RelationDialogue   = "dialogue"
	RelationKinship    = "kinship"
	RelationFriendship = "friendship"
	RelationMentorship = "mentorship"
	RelationRomance    = "romance"
	RelationHostility  = "hostility"
	RelationSameSect   = "same_sect"
)

// Default returns a fresh copy of the built-in tables.
func Default() *Lexicon {
	return &Lexicon{
		Names:  []string{},
		Places: []string{},
		Surnames: []string{
			"赵", "钱", "孙", "李", "周", "吴", "郑", "王", "冯", "陈", "褚", "卫",
			"蒋", "沈", "韩", "杨", "朱", "秦", "许", "何", "吕", "张", "孔", "曹",
			"严", "华", "金", "魏", "陶", "姜", "谢", "邹", "柳", "苏", "潘", "葛",
			"范", "彭", "鲁", "马", "方", "任", "袁", "唐", "罗", "林", "萧", "叶",
			"黄", "刘", "徐", "高", "郭", "段", "宋", "令狐", "欧阳", "慕容", "上官", "东方",
		},
		NameBoundaries: []string{
			"的", "了", "着", "是", "在", "和", "与", "对", "把", "被", "也", "又",
			"都", "就", "却", "便", "向", "从", "给", "让", "跟", "说", "道", "问",
			"答", "笑", "叹", "喊", "叫", "看", "见", "去", "来", "到", "走", "跑",
			"打", "杀", "拿", "听", "想", "一", "不", "这", "那", "他", "她", "它",
			"地", "得", "们", "很", "么", "吗", "呢", "啊", "吧", "呀", "过", "而",
		},
		PlaceMarkers: []string{"在", "到", "去", "回", "进", "回到", "来到", "离开", "前往", "赶往"},
		PlaceSuffixes: []string{
			"山", "峰", "谷", "林", "河", "湖", "海", "城", "镇", "村", "府", "宫",
			"殿", "阁", "楼", "寺", "庙", "塔", "门", "派", "宗", "洞", "州", "国",
		},
		LatinStopwords: []string{
			"The", "A", "An", "He", "She", "It", "They", "We", "I", "You", "His", "Her",
			"Their", "Our", "My", "Your", "But", "And", "Or", "So", "Then", "When", "While",
			"After", "Before", "Because", "If", "In", "On", "At", "As", "Of", "To", "With",
			"This", "That", "These", "Those", "There", "Here", "What", "Why", "How", "Who",
			"Yes", "No", "Not", "Mr", "Mrs", "Ms", "Dr", "Chapter",
		},
		ActionVerbs: []string{
			"去", "来", "到", "走", "跑", "飞", "回", "进", "出", "离开",
			"说", "道", "问", "答", "喊", "叫", "笑", "哭", "叹",
			"打", "杀", "攻击", "战斗", "对抗", "击败", "逃跑",
			"看", "见", "发现", "找", "寻", "遇", "遇到",
			"给", "送", "拿", "取", "得", "获得", "失去",
			"学", "练", "修炼", "突破", "提升", "达到",
			"帮", "救", "保护", "伤害", "杀死",
			"开始", "结束", "完成", "失败", "成功",
			"决定", "选择", "同意", "拒绝",
			"爱", "恨", "喜欢", "讨厌", "尊敬",
			"went", "came", "ran", "fled", "said", "asked", "answered", "shouted",
			"fought", "attacked", "killed", "defeated", "saw", "found", "met",
			"gave", "took", "saved", "helped", "protected", "decided", "refused",
			"loved", "hated", "left", "returned",
		},
		SpeechVerbs: []string{"说", "道", "问", "答", "笑", "叹", "喊", "said", "asked", "replied", "shouted"},
		CausalKeywords: []string{
			"因为", "所以", "导致", "引起", "造成", "结果",
			"because", "so", "led to", "caused", "resulted in", "therefore",
		},
		RelationPatterns: []RelationPattern{
			{
				Type: RelationKinship,
				Templates: []string{
					`{name}是{name}的(?:父亲|母亲|儿子|女儿|哥哥|弟弟|姐姐|妹妹|爷爷|奶奶|爸爸|妈妈)`,
					`{name}的(?:父亲|母亲|儿子|女儿|哥哥|弟弟|姐姐|妹妹|爷爷|奶奶|爸爸|妈妈)(?:是|叫){name}`,
					`{name} (?:is|was) {name}'s (?:father|mother|son|daughter|brother|sister)`,
				},
			},
			{
				Type: RelationFriendship,
				Templates: []string{
					`{name}和{name}(?:是|成为|做)了?(?:朋友|好友|兄弟|姐妹)`,
					`{name}与{name}交好`,
					`{name} and {name} (?:are|were|became) friends`,
				},
			},
			{
				Type: RelationMentorship,
				Templates: []string{
					`{name}是{name}的(?:师父|师傅|徒弟|弟子)`,
					`{name}(?:拜|认){name}为师`,
					`{name}传授{name}`,
				},
			},
			{
				Type: RelationRomance,
				Templates: []string{
					`{name}和{name}(?:相爱|恋爱|喜欢|爱上)`,
					`{name}爱着{name}`,
					`{name} (?:loved|fell in love with) {name}`,
				},
			},
			{
				Type: RelationHostility,
				Templates: []string{
					`{name}和{name}(?:为敌|敌对|仇恨|对抗)`,
					`{name}是{name}的(?:敌人|仇人|对手)`,
					`{name}(?:杀|打|攻击){name}`,
					`{name} (?:attacked|killed|fought) {name}`,
				},
			},
			{
				Type: RelationSameSect,
				Templates: []string{
					`{name}和{name}是(?:同门|师兄弟|师姐妹)`,
					`{name}与{name}同为\S+?弟子`,
				},
			},
		},
		LocationTypes: []Category{
			{Name: "indoor", Keywords: []string{"房", "屋", "殿", "堂", "室", "阁", "楼", "府", "宫"}},
			{Name: "outdoor", Keywords: []string{"山", "峰", "林", "森林", "河", "湖", "海", "谷", "原", "野"}},
			{Name: "building", Keywords: []string{"门", "派", "宗", "寺", "庙", "塔", "城", "镇", "村"}},
			{Name: "natural", Keywords: []string{"天", "地", "界", "域", "境", "洞", "窟"}},
		},
		TimeMarkers: []Category{
			{Name: "absolute", Keywords: []string{
				`\d+年`, `\d+月`, `\d+日`,
				`春天`, `夏天`, `秋天`, `冬天`,
				`早上`, `中午`, `下午`, `晚上`, `夜里`,
			}},
			{Name: "relative", Keywords: []string{
				`第二天`, `次日`, `翌日`,
				`三天后`, `一周后`, `一月后`, `一年后`,
				`\d+天后`, `\d+月后`, `\d+年后`,
				`同时`, `此时`, `这时`, `那时`,
				`之前`, `之后`, `以前`, `以后`,
				`不久`, `很快`, `随后`, `接着`, `然后`,
			}},
		},
		Emotions: []Category{
			{Name: "positive", Keywords: []string{"高兴", "开心", "快乐", "喜悦", "欢喜", "兴奋", "激动", "满意", "欣慰", "愉快", "舒畅", "笑", "微笑", "大笑"}},
			{Name: "negative", Keywords: []string{"悲伤", "难过", "痛苦", "伤心", "哭", "流泪", "哀伤", "失望", "沮丧", "绝望", "忧愁", "忧伤", "悲痛"}},
			{Name: "angry", Keywords: []string{"愤怒", "生气", "恼怒", "暴怒", "怒", "恨", "仇恨", "憎恨", "怨恨", "不满"}},
			{Name: "fear", Keywords: []string{"害怕", "恐惧", "惊恐", "恐慌", "畏惧", "胆怯", "担心", "担忧", "忧虑", "紧张", "不安"}},
			{Name: "surprise", Keywords: []string{"惊讶", "惊奇", "吃惊", "震惊", "诧异", "意外", "愕然", "惊呆"}},
			{Name: "love", Keywords: []string{"爱", "喜欢", "喜爱", "钟情", "倾心", "爱慕", "思念", "想念", "牵挂", "关心", "在乎"}},
		},
		EmotionVerbs: []string{"喜欢", "爱", "恨", "尊敬", "讨厌"},
		States: []StateGroup{
			{Type: "health", Values: []Category{
				{Name: "健康", Keywords: []string{"健康", "康复", "痊愈", "恢复"}},
				{Name: "受伤", Keywords: []string{"受伤", "负伤", "重伤", "轻伤"}},
				{Name: "生病", Keywords: []string{"生病", "患病", "染病"}},
				{Name: "死亡", Keywords: []string{"死亡", "身亡", "丧生", "殒命"}},
			}},
			{Type: "mood", Values: []Category{
				{Name: "快乐", Keywords: []string{"快乐", "高兴", "开心", "愉快"}},
				{Name: "悲伤", Keywords: []string{"悲伤", "难过", "伤心", "痛苦"}},
				{Name: "愤怒", Keywords: []string{"愤怒", "生气", "恼怒", "暴怒"}},
				{Name: "平静", Keywords: []string{"平静", "冷静", "淡定", "从容"}},
			}},
			{Type: "power", Values: []Category{
				{Name: "炼气期", Keywords: []string{"炼气期", "炼气"}},
				{Name: "筑基期", Keywords: []string{"筑基期", "筑基"}},
				{Name: "金丹期", Keywords: []string{"金丹期", "金丹", "结丹"}},
				{Name: "元婴期", Keywords: []string{"元婴期", "元婴"}},
				{Name: "化神期", Keywords: []string{"化神期", "化神"}},
			}},
			{Type: "social_status", Values: []Category{
				{Name: "平民", Keywords: []string{"平民", "百姓", "普通人"}},
				{Name: "弟子", Keywords: []string{"弟子", "门人", "门下"}},
				{Name: "长老", Keywords: []string{"长老", "执事"}},
				{Name: "掌门", Keywords: []string{"掌门", "宗主", "门主"}},
			}},
		},
	}
}
