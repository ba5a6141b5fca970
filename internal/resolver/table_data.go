package resolver

// builtinStrokes covers the opening lessons of Remembering the Kanji so
// offline runs produce sensible counts for the most common characters.
var builtinStrokes = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 5, "五": 4, "六": 4, "七": 2, "八": 2, "九": 2, "十": 2, "口": 3,
	"日": 4, "月": 4, "田": 5, "目": 5, "古": 5, "吾": 7, "冒": 9, "朋": 8, "明": 8, "唱": 11,
	"晶": 12, "品": 9, "呂": 7, "昌": 8, "早": 6, "旭": 6, "世": 5, "胃": 9, "旦": 5, "胆": 9, "亘": 6,
	"凹": 5, "凸": 5, "旧": 5, "自": 6, "白": 5, "百": 6, "中": 4, "千": 3, "舌": 6, "升": 4, "昇": 8,
	"丸": 3, "寸": 3, "専": 9, "博": 12, "占": 5, "上": 3, "下": 3, "卓": 8, "朝": 12, "貝": 7,
	"貞": 9, "員": 10, "見": 7, "児": 7, "元": 4, "頁": 9, "頑": 13, "凡": 3, "負": 9, "万": 3,
	"句": 5, "肌": 6, "旬": 6, "勺": 3, "的": 8, "首": 9, "乙": 1, "乱": 7, "直": 8, "具": 8, "真": 10,
	"工": 3, "左": 5, "右": 5, "有": 6, "賄": 13, "貢": 10, "項": 12, "刀": 2, "刃": 3, "切": 4,
	"召": 5, "昭": 9, "則": 9, "副": 11, "別": 7, "丁": 2, "町": 7, "可": 5, "河": 8, "何": 7,
	"荷": 10, "加": 5, "功": 5, "架": 9, "賀": 12,
}
